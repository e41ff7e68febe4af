package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/repository"
)

// Compile-time check
var _ QueryUseCase = (*queryUC)(nil)

// JobStatusView is the poller payload. The embedded brief appears only once
// the job has completed.
type JobStatusView struct {
	Status        model.JobStatus    `json:"status"`
	Progress      int                `json:"progress"`
	Error         string             `json:"error,omitempty"`
	ResultBriefID string             `json:"result_brief_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Brief         *model.PublicBrief `json:"brief,omitempty"`
}

// BriefCache is an optional read-through cache on the brief detail path.
type BriefCache interface {
	Get(ctx context.Context, id string) (*model.Brief, error)
	Store(ctx context.Context, brief *model.Brief) error
}

type QueryUseCase interface {
	JobStatus(ctx context.Context, jobID string) (*JobStatusView, error)
	GetBrief(ctx context.Context, id string) (*model.BriefWithMeeting, error)
	ListBriefs(ctx context.Context, offset, limit int) ([]*model.BriefWithMeeting, error)
}

type queryUC struct {
	jobs     repository.JobRepository
	briefs   repository.BriefRepository
	meetings repository.MeetingRepository
	cache    BriefCache // may be nil
	log      *zerolog.Logger
}

func NewQueryUseCase(jobs repository.JobRepository, briefs repository.BriefRepository, meetings repository.MeetingRepository, cache BriefCache, log *zerolog.Logger) *queryUC {
	return &queryUC{jobs: jobs, briefs: briefs, meetings: meetings, cache: cache, log: log}
}

func (u *queryUC) JobStatus(ctx context.Context, jobID string) (*JobStatusView, error) {
	job, err := u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}

	view := &JobStatusView{
		Status:        job.Status,
		Progress:      job.Progress,
		Error:         job.Error,
		ResultBriefID: job.ResultBriefID,
		CreatedAt:     job.CreatedAt,
	}
	if job.Status == model.JobStatusCompleted && job.ResultBriefID != "" {
		brief, err := u.fetchBrief(ctx, job.ResultBriefID)
		if err != nil {
			// The terminal state is authoritative; a read miss on the brief
			// row degrades the payload rather than failing the poll.
			u.log.Error().Err(err).Str("brief_id", job.ResultBriefID).Msg("completed job references unreadable brief")
		} else {
			pub := brief.Public()
			view.Brief = &pub
		}
	}
	return view, nil
}

func (u *queryUC) GetBrief(ctx context.Context, id string) (*model.BriefWithMeeting, error) {
	brief, err := u.fetchBrief(ctx, id)
	if err != nil {
		return nil, err
	}
	meeting, err := u.meetings.FindByID(ctx, repository.NoTX, brief.MeetingID)
	if err != nil {
		return nil, err
	}
	return &model.BriefWithMeeting{Brief: brief, Meeting: meeting}, nil
}

func (u *queryUC) ListBriefs(ctx context.Context, offset, limit int) ([]*model.BriefWithMeeting, error) {
	return u.briefs.List(ctx, offset, limit)
}

func (u *queryUC) fetchBrief(ctx context.Context, id string) (*model.Brief, error) {
	if u.cache != nil {
		if b, err := u.cache.Get(ctx, id); err == nil && b != nil {
			return b, nil
		}
	}
	brief, err := u.briefs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if u.cache != nil {
		if err := u.cache.Store(ctx, brief); err != nil {
			u.log.Debug().Err(err).Str("brief_id", id).Msg("brief cache store failed")
		}
	}
	return brief, nil
}
