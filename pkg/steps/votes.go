package steps

import (
	"fmt"
	"time"

	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Votes shows the best rated sessions.
type Votes struct {
	Base
	count int
	title string
}

func newVotes(env scheduler.Env, name string, cfg scheduler.Config) (scheduler.Step, error) {
	base, err := NewBase(env, name, cfg, []provider.Kind{provider.KindVotes}, Defaults{
		MinDuration: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	s := &Votes{Base: base}
	if s.count, err = positive(cfg, "count", 5); err != nil {
		return nil, err
	}
	if s.title, err = cfg.String("title", "Top rated"); err != nil {
		return nil, err
	}
	return s, nil
}

// ShouldSkip skips until results are available.
func (s *Votes) ShouldSkip(mc *scheduler.MachineContext) bool {
	if s.scripted(mc) {
		return true
	}
	v, err := scheduler.Lookup[*provider.Votes](mc, provider.KindVotes)
	return err != nil || len(v.Results()) == 0
}

// Run shows the ranking.
func (s *Votes) Run(mc *scheduler.MachineContext, proceed scheduler.Proceed) error {
	v, err := scheduler.Lookup[*provider.Votes](mc, provider.KindVotes)
	if err != nil {
		return err
	}
	results := v.Results()
	lines := make([]string, 0, min(len(results), s.count))
	for i, r := range results[:min(len(results), s.count)] {
		lines = append(lines, fmt.Sprintf("%d. %s  %.1f (%d votes)", i+1, r.Title, r.Score, r.Votes))
	}
	s.present(surface.Scene{Kind: surface.KindVotes, Title: s.title, Lines: lines}, proceed)
	return nil
}
