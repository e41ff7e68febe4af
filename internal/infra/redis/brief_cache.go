package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"meeting-brief-service/internal/domain/model"
)

// BriefCache keeps finished briefs hot for the polling and detail endpoints.
// Briefs are immutable once written, so there is no invalidation path.
type BriefCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewBriefCache(client RedisClient, ttl time.Duration) *BriefCache {
	return &BriefCache{client: client, ttl: ttl}
}

func briefKey(id string) string { return "brief:" + id }

func (c *BriefCache) Get(ctx context.Context, id string) (*model.Brief, error) {
	data, err := c.client.Get(ctx, briefKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var b model.Brief
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *BriefCache) Store(ctx context.Context, brief *model.Brief) error {
	data, err := json.Marshal(brief)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, briefKey(brief.ID), data, c.ttl)
}
