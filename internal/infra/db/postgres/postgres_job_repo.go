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

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, status, progress, metadata, documents, files, result_brief_id, error, created_at, updated_at`

func (r *jobRepo) Create(ctx context.Context, tx repository.Tx, job *model.BriefJob) error {
	meta, err := json.Marshal(job.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	docs, err := json.Marshal(job.Documents)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	files, err := json.Marshal(job.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	const q = `
INSERT INTO brief_jobs (id, status, progress, metadata, documents, files, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err = execSQL(ctx, r.pool, tx, q,
		job.ID, job.Status, job.Progress, meta, docs, files, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BriefJob, error) {
	q := `SELECT ` + jobColumns + ` FROM brief_jobs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

// MarkProcessing claims the job: the transition happens only while the row
// still reads 'pending', which makes the processing trigger idempotent.
func (r *jobRepo) MarkProcessing(ctx context.Context, id string) (*model.BriefJob, error) {
	q := `
UPDATE brief_jobs
   SET status = 'processing', progress = 10, updated_at = now()
 WHERE id = $1 AND status = 'pending'
RETURNING ` + jobColumns + `;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *jobRepo) FindPendingIDs(ctx context.Context, limit int) ([]string, error) {
	const q = `
SELECT id
  FROM brief_jobs
 WHERE status = 'pending'
 ORDER BY created_at
 LIMIT $1;`
	rows, err := pickRows(ctx, r.pool, nil, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateProgress never moves progress backwards; late writers lose.
func (r *jobRepo) UpdateProgress(ctx context.Context, tx repository.Tx, id string, progress int) error {
	const q = `
UPDATE brief_jobs
   SET progress = GREATEST(progress, $2), updated_at = now()
 WHERE id = $1 AND status IN ('pending', 'processing');`
	_, err := execSQL(ctx, r.pool, tx, q, id, progress)
	return err
}

func (r *jobRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, briefID string) error {
	const q = `
UPDATE brief_jobs
   SET status = 'completed', progress = 100, result_brief_id = $2, error = NULL, updated_at = now()
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, briefID)
	return err
}

func (r *jobRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, message string) error {
	const q = `
UPDATE brief_jobs
   SET status = 'failed', error = $2, updated_at = now()
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, message)
	return err
}

func scanJob(row pgx.Row) (*model.BriefJob, error) {
	var (
		job           model.BriefJob
		status        string
		meta          []byte
		docs          []byte
		files         []byte
		resultBriefID *string
		errMsg        *string
	)
	err := row.Scan(&job.ID, &status, &job.Progress, &meta, &docs, &files, &resultBriefID, &errMsg, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Status = model.JobStatus(status)
	if resultBriefID != nil {
		job.ResultBriefID = *resultBriefID
	}
	if errMsg != nil {
		job.Error = *errMsg
	}
	if err := json.Unmarshal(meta, &job.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := json.Unmarshal(docs, &job.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &job.Files); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
	}
	return &job, nil
}
