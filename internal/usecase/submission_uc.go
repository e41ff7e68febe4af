package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/domain/ports/adapter"
	"meeting-brief-service/internal/domain/ports/repository"
	"meeting-brief-service/internal/extract"
	"meeting-brief-service/internal/infra/logging"
	"meeting-brief-service/internal/infra/metrics"
)

// Compile-time check
var _ SubmissionUseCase = (*submissionUC)(nil)

// UploadedFile is one attachment as received at the boundary; the bytes are
// scoped to the submission request and never persisted.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmissionUseCase validates a submission, extracts every file, and creates
// the pending job. Triggering the background processor is the caller's
// concern (fire-and-forget from the endpoint).
type SubmissionUseCase interface {
	Submit(ctx context.Context, meta model.MeetingMetadata, files []UploadedFile) (*model.BriefJob, error)
}

type submissionUC struct {
	jobs      repository.JobRepository
	extractor *extract.Extractor
	calendar  adapter.CalendarAdapter // optional
	cfg       config.BriefConfig
	log       *zerolog.Logger
}

func NewSubmissionUseCase(jobs repository.JobRepository, extractor *extract.Extractor, calendar adapter.CalendarAdapter, cfg config.BriefConfig, log *zerolog.Logger) *submissionUC {
	return &submissionUC{jobs: jobs, extractor: extractor, calendar: calendar, cfg: cfg, log: log}
}

func (u *submissionUC) Submit(ctx context.Context, meta model.MeetingMetadata, files []UploadedFile) (*model.BriefJob, error) {
	defer logging.TraceDuration(u.log, "SubmissionUC.Submit")()

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 && meta.CalendarEventID == "" {
		return nil, fmt.Errorf("%w: no files attached", domain.ErrInvalidArgument)
	}
	if len(files) > u.cfg.MaxFiles {
		return nil, fmt.Errorf("%w: at most %d files per submission", domain.ErrInvalidArgument, u.cfg.MaxFiles)
	}

	var (
		docs     []model.DocumentContent
		fileMeta []model.DocumentFile
	)
	for _, f := range files {
		// The allow-list is enforced up front: an out-of-list file type is a
		// caller mistake, unlike a corrupt document which is skipped below.
		if _, err := extract.ResolveFormat(f.ContentType, f.Filename); err != nil {
			return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidArgument, f.Filename)
		}
		if int64(len(f.Data)) > u.cfg.MaxFileBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidArgument, f.Filename, u.cfg.MaxFileBytes)
		}
		text, err := u.extractor.Extract(f.Data, f.ContentType, f.Filename)
		if err != nil {
			// Per-file failures are absorbed; the job proceeds as long as at
			// least one document survives.
			metrics.IncExtractionFailure(formatLabel(f.Filename))
			u.log.Warn().Err(err).Str("filename", f.Filename).Msg("skipping unparsable document")
			continue
		}
		docs = append(docs, model.DocumentContent{Filename: f.Filename, Text: text})
		fileMeta = append(fileMeta, model.DocumentFile{
			Filename: f.Filename,
			FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), "."),
			FileSize: int64(len(f.Data)),
		})
	}

	if doc := u.calendarDocument(ctx, meta); doc != nil {
		docs = append(docs, *doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: failed to parse any documents", domain.ErrParseFailure)
	}

	job, err := model.NewBriefJob(ulid.Make().String(), meta, docs, fileMeta)
	if err != nil {
		return nil, err
	}
	if err := u.jobs.Create(ctx, repository.NoTX, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	metrics.IncJobSubmitted()
	u.log.Info().Str("job_id", job.ID).Int("documents", len(docs)).Msg("job created")
	return job, nil
}

// calendarDocument turns the referenced calendar event into a pseudo-document
// so generation always has meeting context to ground on. A fetch failure is
// absorbed like any other per-file skip.
func (u *submissionUC) calendarDocument(ctx context.Context, meta model.MeetingMetadata) *model.DocumentContent {
	if meta.CalendarEventID == "" || u.calendar == nil {
		return nil
	}
	event, err := u.calendar.FetchEvent(ctx, meta.CalendarEventID)
	if err != nil {
		u.log.Warn().Err(err).Str("event_id", meta.CalendarEventID).Msg("calendar event unavailable, skipping")
		return nil
	}
	text := strings.TrimSpace(event.Description)
	if text == "" {
		text = syntheticEventText(event)
	}
	return &model.DocumentContent{Filename: "event_description.txt", Text: text}
}

func syntheticEventText(e *adapter.CalendarEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", e.Summary)
	if !e.Start.IsZero() {
		fmt.Fprintf(&b, "When: %s - %s\n", e.Start.Format(time.RFC1123), e.End.Format(time.RFC1123))
	}
	if len(e.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(e.Attendees, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLabel(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
