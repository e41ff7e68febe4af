package repository

import (
	"context"

	"meeting-brief-service/internal/domain/model"
)

type BriefRepository interface {
	Create(ctx context.Context, tx Tx, brief *model.Brief) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Brief, error)
	// List returns briefs joined with their meetings, newest first.
	List(ctx context.Context, offset, limit int) ([]*model.BriefWithMeeting, error)
}

type MeetingRepository interface {
	Create(ctx context.Context, tx Tx, meeting *model.Meeting) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Meeting, error)
}

// DocumentFileRepository keeps the per-document metadata rows attached to a
// brief for downstream bookkeeping.
type DocumentFileRepository interface {
	CreateAll(ctx context.Context, tx Tx, briefID string, files []model.DocumentFile) error
}

// AnalyticsRepository persists the zeroed analytics stub referencing a
// brief/meeting pair; an external collaborator fills it in later.
type AnalyticsRepository interface {
	CreateStub(ctx context.Context, tx Tx, briefID, meetingID string) error
}
