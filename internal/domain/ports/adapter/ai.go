package adapter

import "context"

// AIServiceAdapter is the port for the external generation service. One call
// is one generation attempt: a system instruction plus a user instruction,
// answered with a single structured (machine-parseable) response.
//
// Implementations translate provider failures into the domain taxonomy:
// domain.ErrAuthentication for credential failures, domain.ErrEmptyResponse
// for blank completions; anything else is treated as transient by the caller.
type AIServiceAdapter interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}
