// Package cache provides best-effort Redis caching of compatibility reports.
// A nil *Cache is valid and disables caching, so the server runs unchanged
// without Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mreid/filmblend/internal/types"
)

// DefaultTTL is how long a cached report stays valid. Reports only change
// when a history is re-scraped, which also invalidates explicitly.
const DefaultTTL = time.Hour

// Cache wraps a Redis client for report storage.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect creates a Cache against the given Redis address and verifies the
// connection.
func Connect(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{client: client, ttl: DefaultTTL}, nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// reportKey is directional: the report's stats are phrased from user A's
// side, so (a,b) and (b,a) cache separately.
func reportKey(userA, userB string) string {
	return fmt.Sprintf("compat:%s:%s", userA, userB)
}

// GetReport returns a cached report, or nil on miss or any Redis trouble.
func (c *Cache) GetReport(ctx context.Context, userA, userB string) *types.CompatibilityReport {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, reportKey(userA, userB)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache read failed for %s/%s: %v", userA, userB, err)
		}
		return nil
	}

	var report types.CompatibilityReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		log.Printf("cache entry for %s/%s is corrupt, dropping it: %v", userA, userB, err)
		c.client.Del(ctx, reportKey(userA, userB))
		return nil
	}
	return &report
}

// SetReport stores a report with the configured TTL. Failures are logged,
// never surfaced.
func (c *Cache) SetReport(ctx context.Context, userA, userB string, report *types.CompatibilityReport) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		log.Printf("failed to marshal report for %s/%s: %v", userA, userB, err)
		return
	}
	if err := c.client.Set(ctx, reportKey(userA, userB), data, c.ttl).Err(); err != nil {
		log.Printf("cache write failed for %s/%s: %v", userA, userB, err)
	}
}

// InvalidateUser drops every cached report involving the handle, called
// after a re-scrape changes their history.
func (c *Cache) InvalidateUser(ctx context.Context, handle string) {
	if c == nil || c.client == nil {
		return
	}

	for _, pattern := range []string{
		fmt.Sprintf("compat:%s:*", handle),
		fmt.Sprintf("compat:*:%s", handle),
	} {
		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			c.client.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			log.Printf("cache invalidation failed for %s: %v", handle, err)
		}
	}
}
