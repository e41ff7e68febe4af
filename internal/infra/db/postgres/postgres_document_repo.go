package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/repository"
)

var _ repository.DocumentFileRepository = (*documentRepo)(nil)

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *documentRepo {
	return &documentRepo{pool: pool}
}

func (r *documentRepo) CreateAll(ctx context.Context, tx repository.Tx, briefID string, files []model.DocumentFile) error {
	const q = `
INSERT INTO brief_documents (id, brief_id, filename, file_type, file_size, created_at)
VALUES ($1, $2, $3, $4, $5, $6);`
	now := time.Now()
	for _, f := range files {
		if _, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), briefID, f.Filename, f.FileType, f.FileSize, now); err != nil {
			return err
		}
	}
	return nil
}
