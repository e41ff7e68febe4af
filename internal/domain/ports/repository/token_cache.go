package repository

import (
	"context"
	"time"
)

// TokenCache is a process-wide cache entry with explicit expiry, used for the
// calendar collaborator's access token. Get reports a miss (not an error)
// for both absent and expired entries.
type TokenCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, expiresAt time.Time) error
	Invalidate(ctx context.Context, key string) error
}
