package content

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against live services when their address is exported,
// e.g. TWEETWALL_TEST_REDIS=localhost:6379.

func TestRedisFeedIntegration(t *testing.T) {
	addr := os.Getenv("TWEETWALL_TEST_REDIS")
	if addr == "" {
		t.Skip("TWEETWALL_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	feed := NewRedisFeed(client, "tweetwall:test:tweets", nil)
	defer feed.Close()

	got := make(chan Tweet, 1)
	cancel := feed.Subscribe(func(tw Tweet) { got <- tw })
	defer cancel()

	// Give the subscription time to register with the server.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, feed.Publish(context.Background(), tweet("r1", time.Now().UTC())))

	select {
	case tw := <-got:
		assert.Equal(t, "r1", tw.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("tweet not delivered")
	}
}

func TestMongoArchiveIntegration(t *testing.T) {
	uri := os.Getenv("TWEETWALL_TEST_MONGO")
	if uri == "" {
		t.Skip("TWEETWALL_TEST_MONGO not set")
	}
	ctx := context.Background()
	client, err := ConnectMongo(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := "tweets_" + time.Now().Format("150405.000")
	a := NewMongoArchive(client, "tweetwall_test", coll)
	t.Cleanup(func() { _ = client.Database("tweetwall_test").Collection(coll).Drop(context.Background()) })

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, a.Store(ctx, tweet("b", base.Add(time.Minute))))
	require.NoError(t, a.Store(ctx, tweet("a", base)))
	require.NoError(t, a.Store(ctx, tweet("a", base))) // upsert

	got, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}
