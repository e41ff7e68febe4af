package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/repository"
	"meeting-brief-service/internal/infra/logging"
	"meeting-brief-service/internal/infra/metrics"
	"meeting-brief-service/internal/usecase"
)

// Progress checkpoints a poller observes while a job is live. Values are
// monotonically non-decreasing for a given job.
const (
	progressClaimed   = 10
	progressCombined  = 30
	progressGenerated = 70
	progressPersisted = 85
	progressDone      = 100
)

// BriefJobProcessor drives one job through the state machine:
// pending -> processing -> completed|failed. Every failure inside the
// pipeline funnels into the failed transition; nothing propagates to the
// fire-and-forget trigger besides a log line.
type BriefJobProcessor struct {
	jobs      repository.JobRepository
	briefs    repository.BriefRepository
	meetings  repository.MeetingRepository
	documents repository.DocumentFileRepository
	analytics repository.AnalyticsRepository
	txm       repository.TransactionManager
	generator usecase.BriefGenerator
	log       *zerolog.Logger
}

func NewBriefJobProcessor(
	jobs repository.JobRepository,
	briefs repository.BriefRepository,
	meetings repository.MeetingRepository,
	documents repository.DocumentFileRepository,
	analytics repository.AnalyticsRepository,
	txm repository.TransactionManager,
	generator usecase.BriefGenerator,
	log *zerolog.Logger,
) *BriefJobProcessor {
	return &BriefJobProcessor{
		jobs:      jobs,
		briefs:    briefs,
		meetings:  meetings,
		documents: documents,
		analytics: analytics,
		txm:       txm,
		generator: generator,
		log:       log,
	}
}

const sweepBatchSize = 16

// Run polls for pending jobs and feeds them to the pool until ctx is
// canceled. The submit-time trigger is only an optimization; this loop is
// what guarantees that a dropped trigger or a process restart never strands
// a pending row. Run in a goroutine.
func (p *BriefJobProcessor) Run(ctx context.Context, pool *Pool, interval time.Duration) {
	p.log.Info().Dur("interval", interval).Msg("pending job sweeper started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("pending job sweeper stopping")
			return
		case <-ticker.C:
			p.sweep(ctx, pool)
		}
	}
}

// sweep re-triggers a batch of unclaimed jobs. Double triggers are harmless:
// the claim guard in Process makes the second one a no-op.
func (p *BriefJobProcessor) sweep(ctx context.Context, pool *Pool) {
	ids, err := p.jobs.FindPendingIDs(ctx, sweepBatchSize)
	if err != nil {
		p.log.Error().Err(err).Msg("pending job sweep failed")
		return
	}
	for _, id := range ids {
		jobID := id
		if err := pool.Submit(func(ctx context.Context) error {
			return p.Process(ctx, jobID)
		}); err != nil {
			// Queue is full; the rest of the batch waits for the next tick.
			return
		}
	}
}

// Process claims and runs a single job. Safe to invoke any number of times
// for the same id: the claim succeeds only while the job is still pending,
// so re-invocation on a processing or terminal job is a no-op.
func (p *BriefJobProcessor) Process(ctx context.Context, jobID string) error {
	job, err := p.jobs.MarkProcessing(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Already claimed, finished, or unknown.
			return nil
		}
		return fmt.Errorf("claim job %s: %w", jobID, err)
	}

	ctx = logging.WithJobID(ctx, job.ID)
	log := logging.With(ctx, p.log)
	log.Info().Int("documents", len(job.Documents)).Msg("processing brief job")
	start := time.Now()

	briefID, err := p.run(ctx, job)
	if err != nil {
		// Record the message verbatim and transition to failed. The terminal
		// write uses a background context: a canceled request context must
		// not leave the job stuck in processing.
		log.Error().Err(err).Msg("brief job failed")
		metrics.IncJobProcessed(string(model.JobStatusFailed))
		if uerr := p.jobs.MarkFailed(context.Background(), repository.NoTX, job.ID, err.Error()); uerr != nil {
			log.Error().Err(uerr).Msg("could not record job failure")
		}
		return nil
	}

	metrics.IncJobProcessed(string(model.JobStatusCompleted))
	if uerr := p.jobs.MarkCompleted(context.Background(), repository.NoTX, job.ID, briefID); uerr != nil {
		log.Error().Err(uerr).Msg("could not record job completion")
		return nil
	}
	log.Info().Str("brief_id", briefID).Dur("duration", time.Since(start)).Msg("brief job completed")
	return nil
}

// run executes steps 3-11 of the pipeline and returns the persisted brief id.
func (p *BriefJobProcessor) run(ctx context.Context, job *model.BriefJob) (string, error) {
	combined := usecase.CombineDocuments(job.Documents)
	filenames := make([]string, 0, len(job.Documents))
	for _, d := range job.Documents {
		filenames = append(filenames, d.Filename)
	}
	p.progress(ctx, job.ID, progressCombined)

	brief, err := p.generator.Generate(ctx, job.Metadata, combined, filenames)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	p.progress(ctx, job.ID, progressGenerated)

	meeting := &model.Meeting{
		ID:            uuid.NewString(),
		Title:         job.Metadata.Title,
		Attendees:     job.Metadata.Attendees,
		MeetingType:   job.Metadata.MeetingType,
		AudienceLevel: job.Metadata.AudienceLevel,
		CreatedAt:     time.Now(),
	}
	brief.ID = uuid.NewString()
	brief.MeetingID = meeting.ID

	// Meeting, brief, document metadata and the analytics stub land together
	// or not at all; a failed job must not leave orphan rows behind.
	err = p.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := p.meetings.Create(ctx, tx, meeting); err != nil {
			return fmt.Errorf("persist meeting: %w", err)
		}
		if err := p.briefs.Create(ctx, tx, brief); err != nil {
			return fmt.Errorf("persist brief: %w", err)
		}
		if len(job.Files) > 0 {
			if err := p.documents.CreateAll(ctx, tx, brief.ID, job.Files); err != nil {
				return fmt.Errorf("persist document metadata: %w", err)
			}
		}
		if err := p.analytics.CreateStub(ctx, tx, brief.ID, meeting.ID); err != nil {
			return fmt.Errorf("persist analytics stub: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	p.progress(ctx, job.ID, progressPersisted)

	return brief.ID, nil
}

// progress advances the job's progress marker. A failed write is logged and
// otherwise ignored: progress is a courtesy to pollers, not pipeline state.
func (p *BriefJobProcessor) progress(ctx context.Context, jobID string, value int) {
	if err := p.jobs.UpdateProgress(ctx, repository.NoTX, jobID, value); err != nil {
		p.log.Warn().Err(err).Str("job_id", jobID).Int("progress", value).Msg("progress update failed")
	}
}
