package model

import (
	"time"

	"meeting-brief-service/internal/domain"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

type MeetingType string

const (
	MeetingTypeDecision   MeetingType = "decision"
	MeetingTypeDiscussion MeetingType = "discussion"
	MeetingTypePlanning   MeetingType = "planning"
	MeetingTypeReview     MeetingType = "review"
	MeetingTypeOther      MeetingType = "other"
)

type AudienceLevel string

const (
	AudienceExec AudienceLevel = "exec"
	AudienceIC   AudienceLevel = "ic"
)

// MeetingMetadata is the descriptor the client submits alongside the files.
type MeetingMetadata struct {
	Title           string        `json:"title"`
	Attendees       string        `json:"attendees"`
	MeetingType     MeetingType   `json:"meeting_type"`
	AudienceLevel   AudienceLevel `json:"audience_level"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
}

func (m MeetingMetadata) Validate() error {
	if m.Title == "" || m.Attendees == "" {
		return domain.ErrInvalidArgument
	}
	switch m.MeetingType {
	case MeetingTypeDecision, MeetingTypeDiscussion, MeetingTypePlanning, MeetingTypeReview, MeetingTypeOther:
	default:
		return domain.ErrInvalidArgument
	}
	switch m.AudienceLevel {
	case AudienceExec, AudienceIC:
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}

// DocumentContent is one extracted document. Populated at submission time and
// immutable once the job is created.
type DocumentContent struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// DocumentFile mirrors DocumentContent with byte-level metadata for
// downstream bookkeeping.
type DocumentFile struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// BriefJob is the unit of asynchronous brief-generation work. It is created
// by the submission endpoint and mutated only by the job processor.
type BriefJob struct {
	ID            string
	Status        JobStatus
	Progress      int
	Metadata      MeetingMetadata
	Documents     []DocumentContent
	Files         []DocumentFile
	ResultBriefID string
	Error         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBriefJob builds a pending job. Creation fails when no document survived
// extraction; a job without input can never produce a grounded brief.
func NewBriefJob(id string, meta MeetingMetadata, docs []DocumentContent, files []DocumentFile) (*BriefJob, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &BriefJob{
		ID:        id,
		Status:    JobStatusPending,
		Progress:  0,
		Metadata:  meta,
		Documents: docs,
		Files:     files,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Terminal reports whether the job can no longer transition.
func (j *BriefJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
