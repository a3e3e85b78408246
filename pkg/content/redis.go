package content

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel tweets are published on.
const DefaultRedisChannel = "tweetwall:tweets"

// RedisFeed is a Feed over Redis pub/sub. Tweets travel as JSON, so any
// ingest process on the network can publish to the wall.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  *log.Logger

	mu   sync.Mutex
	subs []*redis.PubSub
}

// NewRedisFeed creates a feed on channel (default [DefaultRedisChannel]).
func NewRedisFeed(client *redis.Client, channel string, logger *log.Logger) *RedisFeed {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

// Publish sends t to every subscriber on the channel.
func (f *RedisFeed) Publish(ctx context.Context, t Tweet) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, data).Err()
}

// Subscribe starts a subscription delivering decoded tweets to fn on a
// dedicated goroutine. Malformed messages are logged and dropped.
func (f *RedisFeed) Subscribe(fn func(Tweet)) func() {
	ctx := context.Background()
	ps := f.client.Subscribe(ctx, f.channel)

	f.mu.Lock()
	f.subs = append(f.subs, ps)
	f.mu.Unlock()

	go func() {
		for msg := range ps.Channel() {
			var t Tweet
			if err := json.Unmarshal([]byte(msg.Payload), &t); err != nil {
				f.logger.Warn("dropping malformed tweet", "channel", msg.Channel, "error", err)
				continue
			}
			fn(t)
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { _ = ps.Close() }) }
}

// Close ends all subscriptions. The client itself is owned by the caller.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ps := range f.subs {
		_ = ps.Close()
	}
	f.subs = nil
	return nil
}

var (
	_ Feed      = (*RedisFeed)(nil)
	_ Publisher = (*RedisFeed)(nil)
)
