package repository

import (
	"context"

	"meeting-brief-service/internal/domain/model"
)

// JobRepository is the durable record of the job lifecycle. All writes stamp
// updated_at; progress only ever moves forward while the job is live.
type JobRepository interface {
	Create(ctx context.Context, tx Tx, job *model.BriefJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.BriefJob, error)

	// MarkProcessing is the idempotent trigger guard: it transitions the job
	// to processing only when its status is exactly 'pending' and returns the
	// claimed job. Any other current status yields domain.ErrNotFound, which
	// callers treat as "someone else owns this job" and no-op.
	MarkProcessing(ctx context.Context, id string) (*model.BriefJob, error)

	// FindPendingIDs lists ids of jobs still waiting to be claimed, oldest
	// first. The background sweeper uses it to re-trigger jobs whose
	// submit-time trigger was dropped or lost to a restart.
	FindPendingIDs(ctx context.Context, limit int) ([]string, error)

	UpdateProgress(ctx context.Context, tx Tx, id string, progress int) error
	MarkCompleted(ctx context.Context, tx Tx, id, briefID string) error
	MarkFailed(ctx context.Context, tx Tx, id, message string) error
}
