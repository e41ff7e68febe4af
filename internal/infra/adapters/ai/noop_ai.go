package ai

import (
	"context"
	"time"

	"meeting-brief-service/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter returns a fixed, schema-valid brief for local/dev runs where
// no provider key is configured.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

const noopBrief = `{
  "goal": "Review the placeholder agenda produced by the local development adapter.",
  "context": ["This brief was generated without calling a model provider."],
  "options": [],
  "risks_tradeoffs": [],
  "decisions": ["TBD - Owner: TBD - Due: TBD"],
  "action_checklist": [],
  "sources": []
}`

func (a *NoopAIAdapter) Complete(ctx context.Context, model, system, user string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return noopBrief, nil
}
