// Package cache provides the byte cache used to persist word-cloud layout
// solutions and HTTP responses between runs.
//
// Three backends implement [Cache]:
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: JSON files under ~/.cache/tweetwall/ for the CLI
//   - [RedisCache]: a shared Redis instance for walls running on several hosts
//
// Keys are built by a [Keyer] so every component agrees on the key format:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.LayoutKeyOpts{Step: "wordcloud", Width: 1280, Height: 720})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/tweetwall/pkg/observability"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and unmarshals it into v, reporting the lookup to the
// cache hooks under keyType. A corrupt entry is treated as a miss.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) (bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
