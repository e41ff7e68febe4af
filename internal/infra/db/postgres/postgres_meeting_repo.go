package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/repository"
)

var _ repository.MeetingRepository = (*meetingRepo)(nil)

type meetingRepo struct {
	pool *pgxpool.Pool
}

func NewMeetingRepo(pool *pgxpool.Pool) *meetingRepo {
	return &meetingRepo{pool: pool}
}

func (r *meetingRepo) Create(ctx context.Context, tx repository.Tx, m *model.Meeting) error {
	const q = `
INSERT INTO meetings (id, title, attendees, meeting_type, audience_level, created_at)
VALUES ($1, $2, $3, $4, $5, $6);`
	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.Title, m.Attendees, m.MeetingType, m.AudienceLevel, m.CreatedAt)
	return err
}

func (r *meetingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Meeting, error) {
	const q = `
SELECT id, title, attendees, meeting_type, audience_level, created_at
  FROM meetings WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var (
		m      model.Meeting
		mType  string
		aLevel string
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Attendees, &mType, &aLevel, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.MeetingType = model.MeetingType(mType)
	m.AudienceLevel = model.AudienceLevel(aLevel)
	return &m, nil
}
