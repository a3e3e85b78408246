package provider

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/tweetwall/pkg/content"
)

// Votes holds session ratings, refreshed at a fixed rate.
type Votes struct {
	source   content.VoteSource
	schedule Schedule

	mu      sync.RWMutex
	results []content.VoteResult
}

// NewVotes creates a vote provider polling source every interval
// (default 30s).
func NewVotes(source content.VoteSource, interval, initialDelay time.Duration) *Votes {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Votes{
		source:   source,
		schedule: Schedule{Mode: FixedRate, Interval: interval, InitialDelay: initialDelay},
	}
}

// Kind returns KindVotes.
func (v *Votes) Kind() Kind { return KindVotes }

// Schedule returns the fixed-rate refresh schedule.
func (v *Votes) Schedule() Schedule { return v.schedule }

// Run refreshes the results, best score first.
func (v *Votes) Run(ctx context.Context) error {
	results, err := v.source.Votes(ctx)
	if err != nil {
		return err
	}
	slices.SortStableFunc(results, func(a, b content.VoteResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Votes, a.Votes)
	})
	v.mu.Lock()
	v.results = results
	v.mu.Unlock()
	return nil
}

// Results returns a copy of the latest results.
func (v *Votes) Results() []content.VoteResult {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.results)
}

var _ Scheduled = (*Votes)(nil)
