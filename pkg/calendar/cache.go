package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/models"

	"github.com/go-redis/redis/v8"
)

// Cache holds aggregated payloads in redis for the duration of one render
// cycle. Keys include a per-case version counter; bumping the counter on any
// mutation touching the case invalidates every cached range for it without a
// key scan. A nil *Cache is valid and disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to redis at the given URL (redis://...)
func NewCache(url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Cache{client: client, ttl: 60 * time.Second}, nil
}

func (c *Cache) key(ctx context.Context, caseID string, viewer *models.Viewer, from, to string) string {
	version, err := c.client.Get(ctx, versionKey(caseID)).Int64()
	if err != nil && err != redis.Nil {
		version = -1 // treat redis trouble as a miss, not an error
	}
	return fmt.Sprintf("calendar:%s:v%d:%s:%s:%s:%s", caseID, version, viewer.ID, viewer.Timezone, from, to)
}

func versionKey(caseID string) string {
	return "calendar_version:" + caseID
}

// Get returns a cached payload for the (case, viewer, range) tuple
func (c *Cache) Get(ctx context.Context, caseID string, viewer *models.Viewer, from, to string) (*models.CalendarPayload, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(ctx, caseID, viewer, from, to)).Bytes()
	if err != nil {
		return nil, false
	}
	var payload models.CalendarPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// Set stores a payload; failures are ignored, the cache is best-effort
func (c *Cache) Set(ctx context.Context, caseID string, viewer *models.Viewer, from, to string, payload *models.CalendarPayload) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(ctx, caseID, viewer, from, to), raw, c.ttl)
}

// InvalidateCase bumps the case version so all cached ranges for it go stale
func (c *Cache) InvalidateCase(ctx context.Context, caseID string) {
	if c == nil || caseID == "" {
		return
	}
	c.client.Incr(ctx, versionKey(caseID))
}

// Close releases the redis connection
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
