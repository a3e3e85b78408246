package steps

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Tweets shows the most recent tweets.
type Tweets struct {
	Base
	count int
	title string
}

func newTweets(env scheduler.Env, name string, cfg scheduler.Config) (scheduler.Step, error) {
	base, err := NewBase(env, name, cfg, []provider.Kind{provider.KindTweets}, Defaults{
		MinDuration: 10 * time.Second,
		Animation:   time.Second,
		UIThread:    true,
	})
	if err != nil {
		return nil, err
	}
	s := &Tweets{Base: base}
	if s.count, err = positive(cfg, "count", 5); err != nil {
		return nil, err
	}
	if s.title, err = cfg.String("title", "Latest tweets"); err != nil {
		return nil, err
	}
	return s, nil
}

// ShouldSkip skips while no tweet has arrived.
func (s *Tweets) ShouldSkip(mc *scheduler.MachineContext) bool {
	if s.scripted(mc) {
		return true
	}
	w, err := scheduler.Lookup[*provider.TweetWindow](mc, provider.KindTweets)
	return err != nil || w.Len() == 0
}

// Run shows the tweets and proceeds when the animation has finished.
func (s *Tweets) Run(mc *scheduler.MachineContext, proceed scheduler.Proceed) error {
	w, err := scheduler.Lookup[*provider.TweetWindow](mc, provider.KindTweets)
	if err != nil {
		return err
	}
	tweets := w.Recent(s.count)
	lines := make([]string, 0, len(tweets))
	for _, t := range tweets {
		lines = append(lines, fmt.Sprintf("@%s: %s", t.Author, strings.Join(strings.Fields(t.Text), " ")))
	}
	s.present(surface.Scene{Kind: surface.KindTweets, Title: s.title, Lines: lines}, proceed)
	return nil
}
