package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/repository"
)

var _ repository.BriefRepository = (*briefRepo)(nil)

type briefRepo struct {
	pool *pgxpool.Pool
}

func NewBriefRepo(pool *pgxpool.Pool) *briefRepo {
	return &briefRepo{pool: pool}
}

func (r *briefRepo) Create(ctx context.Context, tx repository.Tx, b *model.Brief) error {
	content, err := json.Marshal(briefContent{
		Context:         b.Context,
		Options:         b.Options,
		RisksTradeoffs:  b.RisksTradeoffs,
		Decisions:       b.Decisions,
		ActionChecklist: b.ActionChecklist,
		Sources:         b.Sources,
	})
	if err != nil {
		return fmt.Errorf("encode brief content: %w", err)
	}

	const q = `
INSERT INTO briefs (id, meeting_id, goal, content, word_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6);`
	_, err = execSQL(ctx, r.pool, tx, q, b.ID, b.MeetingID, b.Goal, content, b.WordCount, b.CreatedAt)
	return err
}

func (r *briefRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Brief, error) {
	const q = `
SELECT id, meeting_id, goal, content, word_count, created_at
  FROM briefs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanBrief(row)
}

func (r *briefRepo) List(ctx context.Context, offset, limit int) ([]*model.BriefWithMeeting, error) {
	const q = `
SELECT b.id, b.meeting_id, b.goal, b.content, b.word_count, b.created_at,
       m.id, m.title, m.attendees, m.meeting_type, m.audience_level, m.created_at
  FROM briefs b
  JOIN meetings m ON m.id = b.meeting_id
 ORDER BY b.created_at DESC
OFFSET $1 LIMIT $2;`
	rows, err := pickRows(ctx, r.pool, nil, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.BriefWithMeeting
	for rows.Next() {
		var (
			b       model.Brief
			m       model.Meeting
			content []byte
			mType   string
			aLevel  string
		)
		if err := rows.Scan(
			&b.ID, &b.MeetingID, &b.Goal, &content, &b.WordCount, &b.CreatedAt,
			&m.ID, &m.Title, &m.Attendees, &mType, &aLevel, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := decodeBriefContent(content, &b); err != nil {
			return nil, err
		}
		m.MeetingType = model.MeetingType(mType)
		m.AudienceLevel = model.AudienceLevel(aLevel)
		out = append(out, &model.BriefWithMeeting{Brief: &b, Meeting: &m})
	}
	return out, rows.Err()
}

// briefContent is the jsonb column payload: everything except the scalar
// columns we filter and sort on.
type briefContent struct {
	Context         []string            `json:"context"`
	Options         []model.BriefOption `json:"options"`
	RisksTradeoffs  []string            `json:"risks_tradeoffs"`
	Decisions       []string            `json:"decisions"`
	ActionChecklist []model.ActionItem  `json:"action_checklist"`
	Sources         []model.BriefSource `json:"sources"`
}

func scanBrief(row pgx.Row) (*model.Brief, error) {
	var (
		b       model.Brief
		content []byte
	)
	if err := row.Scan(&b.ID, &b.MeetingID, &b.Goal, &content, &b.WordCount, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := decodeBriefContent(content, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func decodeBriefContent(raw []byte, b *model.Brief) error {
	var c briefContent
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("decode brief content: %w", err)
	}
	b.Context = c.Context
	b.Options = c.Options
	b.RisksTradeoffs = c.RisksTradeoffs
	b.Decisions = c.Decisions
	b.ActionChecklist = c.ActionChecklist
	b.Sources = c.Sources
	return nil
}
