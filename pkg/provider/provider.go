// Package provider manages the data providers steps read from.
//
// A provider is a typed, internally synchronized state holder identified by
// a [Kind]. Which capabilities it has is expressed by the optional
// interfaces it implements:
//
//   - [NewTweetAware]: receives every tweet from the live feed
//   - [HistoryAware]: receives the archived backlog once at startup
//   - [Scheduled]: refreshed periodically by the task pool
//   - [Initializer]: must report ready before the scheduler may start
//
// The [Manager] builds exactly the kinds the configured steps require from a
// [Registry] of factories, wires them up, and returns an immutable [Set].
package provider

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/tweetwall/pkg/config"
	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
)

// Kind tags a concrete provider type. At most one provider of each kind
// exists per process.
type Kind string

// Built-in kinds.
const (
	KindTweets Kind = "tweets"
	KindWords  Kind = "words"
	KindAgenda Kind = "agenda"
	KindVotes  Kind = "votes"
)

// Provider is a data source consulted by steps.
type Provider interface {
	Kind() Kind
}

// NewTweetAware providers receive live tweets. OnTweet is called from feed
// goroutines and must be safe for concurrent use with readers.
type NewTweetAware interface {
	OnTweet(t content.Tweet)
}

// HistoryAware providers receive the archived backlog, oldest first, before
// any live tweet.
type HistoryAware interface {
	OnHistory(tweets []content.Tweet)
}

// Mode selects how a scheduled provider's runs are spaced.
type Mode int

const (
	// FixedRate starts runs at a steady cadence regardless of run time.
	FixedRate Mode = iota
	// FixedDelay waits Interval after each run completes.
	FixedDelay
)

// String returns "fixed-rate" or "fixed-delay".
func (m Mode) String() string {
	if m == FixedDelay {
		return "fixed-delay"
	}
	return "fixed-rate"
}

// Schedule describes when a scheduled provider runs.
type Schedule struct {
	Mode         Mode
	Interval     time.Duration
	InitialDelay time.Duration
}

// Scheduled providers are refreshed periodically. A failing or panicking
// run is logged and never cancels later runs.
type Scheduled interface {
	Schedule() Schedule
	Run(ctx context.Context) error
}

// Initializer providers block startup until Initialized reports true. The
// manager polls at PollInterval.
type Initializer interface {
	Initialized() bool
	PollInterval() time.Duration
}

// Config is the per-provider configuration blob.
type Config = config.Blob

// Factory constructs a provider from its configuration.
type Factory func(Config) (Provider, error)

// Entry is one [[providers]] configuration entry.
type Entry struct {
	Kind   Kind
	Config Config
}

// Registry maps kinds to factories.
type Registry struct {
	factories map[Kind]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds a factory, replacing any earlier one for the same kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.factories[kind] = f
}

// Lookup returns the factory for kind.
func (r *Registry) Lookup(kind Kind) (Factory, bool) {
	f, ok := r.factories[kind]
	return f, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func invalidConfig(kind Kind, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "provider %q", kind)
}
