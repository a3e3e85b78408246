package provider

import (
	"fmt"
	"time"

	"github.com/matzehuels/tweetwall/pkg/content"
)

// Sources are the external collaborators the built-in providers pull from.
type Sources struct {
	Sessions content.SessionSource
	Votes    content.VoteSource
}

// BuiltinRegistry registers the tweets, words, agenda and votes factories.
// Agenda and votes fail at construction when their source is missing, which
// only matters when a configured step requires them.
func BuiltinRegistry(src Sources) *Registry {
	r := NewRegistry()
	r.Register(KindTweets, newTweetWindow)
	r.Register(KindWords, newWordFrequency)
	r.Register(KindAgenda, func(cfg Config) (Provider, error) {
		if src.Sessions == nil {
			return nil, fmt.Errorf("no session source configured")
		}
		var opts AgendaOptions
		var err error
		if opts.Interval, err = cfg.Duration("interval", time.Minute); err != nil {
			return nil, err
		}
		if opts.InitialDelay, err = cfg.Duration("initial_delay", 0); err != nil {
			return nil, err
		}
		if opts.PollInterval, err = cfg.Duration("poll_interval", 100*time.Millisecond); err != nil {
			return nil, err
		}
		return NewAgenda(src.Sessions, opts), nil
	})
	r.Register(KindVotes, func(cfg Config) (Provider, error) {
		if src.Votes == nil {
			return nil, fmt.Errorf("no vote source configured")
		}
		interval, err := cfg.Duration("interval", 30*time.Second)
		if err != nil {
			return nil, err
		}
		delay, err := cfg.Duration("initial_delay", 0)
		if err != nil {
			return nil, err
		}
		return NewVotes(src.Votes, interval, delay), nil
	})
	return r
}
