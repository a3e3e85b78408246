package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/observability"
)

// DefaultHistoryLimit is the number of archived tweets replayed at startup.
const DefaultHistoryLimit = 200

// Options configures a Manager.
type Options struct {
	// Feed delivers live tweets to NewTweetAware providers. Optional.
	Feed content.Feed

	// Archive supplies the backlog for HistoryAware providers. Optional.
	Archive content.Archive

	// HistoryLimit caps the replayed backlog (default DefaultHistoryLimit).
	HistoryLimit int

	Logger *log.Logger
}

// Manager owns the provider lifecycle: construction, feed wiring, periodic
// refresh and the startup initialization barrier.
type Manager struct {
	registry *Registry
	opts     Options
	logger   *log.Logger

	mu      sync.Mutex
	set     *Set
	pool    *pool
	cancels []func()
}

// NewManager creates a manager resolving factories from registry.
func NewManager(registry *Registry, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Manager{registry: registry, opts: opts, logger: opts.Logger}
}

// Initialize builds exactly the required kinds, wires them and blocks until
// every Initializer reports ready or ctx ends.
//
// Configuration entries name provider kinds with their settings; a kind may
// appear at most once. Entries for kinds no step requires are ignored. A
// required kind without an entry is built with an empty configuration.
func (m *Manager) Initialize(ctx context.Context, required []Kind, entries []Entry) (*Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set != nil {
		return nil, errors.New(errors.ErrCodeInternal, "providers already initialized")
	}

	configs := make(map[Kind]Config, len(entries))
	for _, e := range entries {
		if _, dup := configs[e.Kind]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateProvider, "provider %q configured more than once", e.Kind)
		}
		if e.Config == nil {
			e.Config = Config{}
		}
		configs[e.Kind] = e.Config
	}

	kinds := slices.Clone(required)
	slices.Sort(kinds)
	kinds = slices.Compact(kinds)

	for _, k := range kinds {
		if _, ok := m.registry.Lookup(k); !ok {
			return nil, errors.New(errors.ErrCodeMissingFactory, "no factory registered for provider %q", k)
		}
	}
	for k := range configs {
		if !slices.Contains(kinds, k) {
			m.logger.Debug("ignoring provider not required by any step", "provider", k)
		}
	}

	providers := make([]Provider, 0, len(kinds))
	for _, k := range kinds {
		factory, _ := m.registry.Lookup(k)
		cfg := configs[k]
		if cfg == nil {
			cfg = Config{}
		}
		p, err := factory(cfg)
		if err != nil {
			return nil, invalidConfig(k, err)
		}
		if p.Kind() != k {
			return nil, errors.New(errors.ErrCodeInternal, "factory for %q built a %q provider", k, p.Kind())
		}
		providers = append(providers, p)
		m.logger.Debug("created provider", "provider", k)
	}
	set := NewSet(providers...)

	m.replayHistory(ctx, providers)
	m.subscribe(providers)

	tasks, err := scheduledTasks(providers)
	if err != nil {
		m.closeLocked()
		return nil, err
	}
	if len(tasks) > 0 {
		m.pool = startPool(context.WithoutCancel(ctx), tasks, m.logger)
	}

	if err := m.await(ctx, providers); err != nil {
		m.closeLocked()
		return nil, err
	}

	m.set = set
	return set, nil
}

func (m *Manager) replayHistory(ctx context.Context, providers []Provider) {
	if m.opts.Archive == nil {
		return
	}
	var aware []HistoryAware
	for _, p := range providers {
		if h, ok := p.(HistoryAware); ok {
			aware = append(aware, h)
		}
	}
	if len(aware) == 0 {
		return
	}
	history, err := m.opts.Archive.Recent(ctx, m.opts.HistoryLimit)
	if err != nil {
		m.logger.Warn("failed to load tweet history", "error", err)
		return
	}
	for _, h := range aware {
		h.OnHistory(slices.Clone(history))
	}
	m.logger.Info("replayed tweet history", "tweets", len(history), "providers", len(aware))
}

func (m *Manager) subscribe(providers []Provider) {
	if m.opts.Feed == nil {
		return
	}
	for _, p := range providers {
		aware, ok := p.(NewTweetAware)
		if !ok {
			continue
		}
		kind := p.Kind()
		cancel := m.opts.Feed.Subscribe(func(t content.Tweet) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("provider panicked on tweet", "provider", kind, "tweet", t.ID, "panic", r)
				}
			}()
			aware.OnTweet(t)
		})
		m.cancels = append(m.cancels, cancel)
	}
}

func scheduledTasks(providers []Provider) ([]*task, error) {
	var tasks []*task
	for _, p := range providers {
		s, ok := p.(Scheduled)
		if !ok {
			continue
		}
		sched := s.Schedule()
		if sched.Interval <= 0 {
			return nil, invalidConfig(p.Kind(), fmt.Errorf("schedule interval must be positive, got %v", sched.Interval))
		}
		tasks = append(tasks, &task{kind: p.Kind(), schedule: sched, run: s.Run})
	}
	return tasks, nil
}

// await polls every Initializer until it is ready.
func (m *Manager) await(ctx context.Context, providers []Provider) error {
	for _, p := range providers {
		init, ok := p.(Initializer)
		if !ok {
			continue
		}
		start := time.Now()
		interval := init.PollInterval()
		if interval <= 0 {
			interval = 100 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		for !init.Initialized() {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "provider %q did not initialize", p.Kind())
			case <-ticker.C:
			}
		}
		ticker.Stop()

		waited := time.Since(start)
		observability.Provider().OnProviderReady(ctx, string(p.Kind()), waited)
		m.logger.Info("provider ready", "provider", p.Kind(), "waited", waited.Round(time.Millisecond))
	}
	return nil
}

// Set returns the initialized providers, or nil before Initialize succeeds.
func (m *Manager) Set() *Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

// Close stops periodic tasks and feed subscriptions.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	return nil
}

func (m *Manager) closeLocked() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	if m.pool != nil {
		m.pool.stop()
		m.pool = nil
	}
}
