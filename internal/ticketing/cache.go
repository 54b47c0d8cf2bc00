package ticketing

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
)

// Fetcher is implemented by Client and CachedClient.
type Fetcher interface {
	FetchEvents(ctx context.Context, q Query) ([]model.ExternalEvent, error)
}

// CachedClient keeps successful provider responses in Redis.  Failures are
// never cached, and any Redis error falls through to the provider.
type CachedClient struct {
	next   Fetcher
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewCachedClient wraps next.  With a nil client or a non-positive ttl it
// returns next unchanged.
func NewCachedClient(next Fetcher, rdb *redis.Client, ttl time.Duration, prefix string, logger *zap.Logger) Fetcher {
	if rdb == nil || ttl <= 0 {
		return next
	}
	return &CachedClient{next: next, rdb: rdb, ttl: ttl, prefix: prefix, logger: logger}
}

func (c *CachedClient) FetchEvents(ctx context.Context, q Query) ([]model.ExternalEvent, error) {
	key := CacheKey(c.prefix, q)

	if bs, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var events []model.ExternalEvent
		if err := json.Unmarshal(bs, &events); err == nil {
			return events, nil
		}
		c.logger.Warn("discarding undecodable cached events", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("events cache read failed", zap.Error(err))
	}

	events, err := c.next.FetchEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	if bs, err := json.Marshal(events); err == nil {
		if err := c.rdb.SetEx(ctx, key, bs, c.ttl).Err(); err != nil {
			c.logger.Warn("events cache write failed", zap.Error(err))
		}
	}
	return events, nil
}

// CacheKey builds a key from the city and interests exactly as they are
// sent to the provider, so two queries share an entry only when the
// provider would see the same payload.  Interest order is kept.
func CacheKey(prefix string, q Query) string {
	parts := make([]string, 0, len(q.Interests)+1)
	parts = append(parts, q.City)
	parts = append(parts, q.Interests...)
	sum := sha1.Sum([]byte(strings.Join(parts, "\x1f")))
	return fmt.Sprintf("%s:events:%x", prefix, sum[:])
}
