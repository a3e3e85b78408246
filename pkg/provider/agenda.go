package provider

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/tweetwall/pkg/content"
)

// Agenda holds the conference sessions, refreshed with fixed delay from a
// session source. Startup waits for the first successful refresh.
type Agenda struct {
	source   content.SessionSource
	schedule Schedule
	poll     time.Duration

	mu       sync.RWMutex
	sessions []content.Session
	ready    bool
}

// AgendaOptions configures an Agenda.
type AgendaOptions struct {
	Interval     time.Duration // default 1m
	InitialDelay time.Duration
	PollInterval time.Duration // default 100ms
}

// NewAgenda creates an agenda provider reading from source.
func NewAgenda(source content.SessionSource, opts AgendaOptions) *Agenda {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	return &Agenda{
		source: source,
		schedule: Schedule{
			Mode:         FixedDelay,
			Interval:     opts.Interval,
			InitialDelay: opts.InitialDelay,
		},
		poll: opts.PollInterval,
	}
}

// Kind returns KindAgenda.
func (a *Agenda) Kind() Kind { return KindAgenda }

// Schedule returns the fixed-delay refresh schedule.
func (a *Agenda) Schedule() Schedule { return a.schedule }

// Run refreshes the sessions. On failure the last known agenda is kept.
func (a *Agenda) Run(ctx context.Context) error {
	sessions, err := a.source.Sessions(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.sessions = sessions
	a.ready = true
	a.mu.Unlock()
	return nil
}

// Initialized reports whether a refresh has succeeded.
func (a *Agenda) Initialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// PollInterval returns how often startup checks Initialized.
func (a *Agenda) PollInterval() time.Duration { return a.poll }

// Current returns the sessions running at now.
func (a *Agenda) Current(now time.Time) []content.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []content.Session
	for _, s := range a.sessions {
		if s.Running(now) {
			out = append(out, s)
		}
	}
	return out
}

// Upcoming returns up to n sessions starting after now, earliest first.
func (a *Agenda) Upcoming(now time.Time, n int) []content.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []content.Session
	for _, s := range a.sessions {
		if s.Start.After(now) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(x, y content.Session) int { return x.Start.Compare(y.Start) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var (
	_ Scheduled   = (*Agenda)(nil)
	_ Initializer = (*Agenda)(nil)
)
