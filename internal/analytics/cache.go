package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	summaryVersionKey = "dashboard:summary:version"
	summaryKeyPrefix  = "dashboard:summary:v"
	refreshChannel    = "dashboard.refresh"
)

// SummaryCache keeps the rendered dashboard summary in Redis. Candidate and
// screening writes invalidate it by bumping a version counter, so stale
// entries fall out of addressing and expire with the TTL. A nil cache or
// client degrades to rebuilding on every request.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache instantiates the cache helper.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func (c *SummaryCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, summaryVersionKey).Int64()
	if err == redis.Nil || (err == nil && ver <= 0) {
		if err := c.client.Set(ctx, summaryVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *SummaryCache) key(ctx context.Context) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", summaryKeyPrefix, ver), nil
}

// Get returns the cached summary at the current version. Any failure is a
// miss; the caller rebuilds.
func (c *SummaryCache) Get(ctx context.Context) (Summary, bool) {
	if c == nil || c.client == nil {
		return Summary{}, false
	}
	key, err := c.key(ctx)
	if err != nil {
		return Summary{}, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return Summary{}, false
	}
	var out Summary
	if err := json.Unmarshal(payload, &out); err != nil {
		return Summary{}, false
	}
	return out, true
}

// Put stores the summary under the current version key with the TTL.
func (c *SummaryCache) Put(ctx context.Context, summary Summary) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.key(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Invalidate bumps the version counter and notifies other instances so the
// summary is rebuilt before the next dashboard request.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, summaryVersionKey).Err(); err != nil {
		return err
	}
	return c.client.Publish(ctx, refreshChannel, "refresh").Err()
}

// Refreshes emits one signal per invalidation published by any instance,
// coalescing bursts. The channel closes when ctx is cancelled.
func (c *SummaryCache) Refreshes(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	if c == nil || c.client == nil {
		close(out)
		return out
	}
	sub := c.client.Subscribe(ctx, refreshChannel)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
