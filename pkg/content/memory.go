package content

import (
	"context"
	"slices"
	"sync"
)

// MemoryArchive keeps the most recent tweets in memory. It is the archive
// used when no database is configured.
type MemoryArchive struct {
	mu     sync.Mutex
	limit  int
	tweets []Tweet
}

// NewMemoryArchive keeps at most limit tweets (default 500).
func NewMemoryArchive(limit int) *MemoryArchive {
	if limit <= 0 {
		limit = 500
	}
	return &MemoryArchive{limit: limit}
}

// Store appends t, replacing an earlier tweet with the same ID.
func (a *MemoryArchive) Store(_ context.Context, t Tweet) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tweets = slices.DeleteFunc(a.tweets, func(o Tweet) bool { return o.ID == t.ID })
	a.tweets = append(a.tweets, t)
	if over := len(a.tweets) - a.limit; over > 0 {
		a.tweets = slices.Delete(a.tweets, 0, over)
	}
	return nil
}

// Recent returns up to limit tweets, oldest first.
func (a *MemoryArchive) Recent(_ context.Context, limit int) ([]Tweet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := 0
	if limit > 0 && len(a.tweets) > limit {
		start = len(a.tweets) - limit
	}
	return slices.Clone(a.tweets[start:]), nil
}

var _ Archive = (*MemoryArchive)(nil)
