package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"meeting-brief-service/internal/domain/ports/repository"
)

var _ repository.AnalyticsRepository = (*analyticsRepo)(nil)

type analyticsRepo struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepo(pool *pgxpool.Pool) *analyticsRepo {
	return &analyticsRepo{pool: pool}
}

// CreateStub writes the zeroed analytics row at completion time; an external
// collaborator populates it later.
func (r *analyticsRepo) CreateStub(ctx context.Context, tx repository.Tx, briefID, meetingID string) error {
	const q = `
INSERT INTO brief_analytics (id, brief_id, meeting_id, view_count, export_count, last_viewed_at, created_at)
VALUES ($1, $2, $3, 0, 0, NULL, $4);`
	_, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), briefID, meetingID, time.Now())
	return err
}
