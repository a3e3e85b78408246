package provider

import (
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/tweetwall/pkg/content"
)

// DefaultWindowSize is the default number of tweets a TweetWindow keeps.
const DefaultWindowSize = 50

// TweetWindow keeps the most recent tweets, deduplicated by ID.
type TweetWindow struct {
	mu     sync.RWMutex
	size   int
	tweets []content.Tweet // oldest first
	seen   map[string]struct{}
}

// NewTweetWindow keeps at most size tweets (default DefaultWindowSize).
func NewTweetWindow(size int) *TweetWindow {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &TweetWindow{size: size, seen: make(map[string]struct{}, size)}
}

func newTweetWindow(cfg Config) (Provider, error) {
	size, err := cfg.Int("size", DefaultWindowSize)
	if err != nil {
		return nil, err
	}
	return NewTweetWindow(size), nil
}

// Kind returns KindTweets.
func (w *TweetWindow) Kind() Kind { return KindTweets }

// OnTweet adds t unless a tweet with the same ID is already in the window.
func (w *TweetWindow) OnTweet(t content.Tweet) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.add(t)
}

// OnHistory adds the backlog.
func (w *TweetWindow) OnHistory(tweets []content.Tweet) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range tweets {
		w.add(t)
	}
}

func (w *TweetWindow) add(t content.Tweet) {
	if _, dup := w.seen[t.ID]; dup {
		return
	}
	w.seen[t.ID] = struct{}{}
	w.tweets = append(w.tweets, t)
	if over := len(w.tweets) - w.size; over > 0 {
		for _, old := range w.tweets[:over] {
			delete(w.seen, old.ID)
		}
		w.tweets = slices.Delete(w.tweets, 0, over)
	}
}

// Recent returns up to n tweets, newest first. n <= 0 returns all.
func (w *TweetWindow) Recent(n int) []content.Tweet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n <= 0 || n > len(w.tweets) {
		n = len(w.tweets)
	}
	out := slices.Clone(w.tweets[len(w.tweets)-n:])
	slices.Reverse(out)
	return out
}

// Since returns the tweets created after t, oldest first.
func (w *TweetWindow) Since(t time.Time) []content.Tweet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []content.Tweet
	for _, tw := range w.tweets {
		if tw.CreatedAt.After(t) {
			out = append(out, tw)
		}
	}
	return out
}

// Len returns the number of tweets in the window.
func (w *TweetWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.tweets)
}

var (
	_ NewTweetAware = (*TweetWindow)(nil)
	_ HistoryAware  = (*TweetWindow)(nil)
)
