package scheduler

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/provider"
)

// Properties is a concurrent key/value bag shared by all steps for the life
// of the process. Storing nil under a key removes it.
type Properties struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewProperties creates an empty bag.
func NewProperties() *Properties {
	return &Properties{m: make(map[string]any)}
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.m[key]
	return v, ok
}

// Set stores v under key, or removes key when v is nil.
func (p *Properties) Set(key string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v == nil {
		delete(p.m, key)
		return
	}
	p.m[key] = v
}

// Delete removes key.
func (p *Properties) Delete(key string) { p.Set(key, nil) }

// Len returns the number of keys.
func (p *Properties) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

// Snapshot returns a shallow copy of the bag.
func (p *Properties) Snapshot() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.m)
}

// MachineContext is the state handed to every step invocation: the property
// bag, the providers visible to the current step, the skip token, and the
// logger and context of the scheduler run.
type MachineContext struct {
	// Properties persist across steps and passes.
	Properties *Properties

	ctx       context.Context
	logger    *log.Logger
	providers *provider.Set

	mu      sync.RWMutex
	view    provider.View
	current string

	skip   atomic.Bool
	skipCh chan struct{}
}

// NewMachineContext creates a context over providers. A nil logger uses
// log.Default().
func NewMachineContext(ctx context.Context, providers *provider.Set, logger *log.Logger) *MachineContext {
	if logger == nil {
		logger = log.Default()
	}
	if providers == nil {
		providers = provider.NewSet()
	}
	return &MachineContext{
		Properties: NewProperties(),
		ctx:        ctx,
		logger:     logger,
		providers:  providers,
		view:       providers.Restrict(nil),
		skipCh:     make(chan struct{}, 1),
	}
}

// Context returns the context of the scheduler run.
func (m *MachineContext) Context() context.Context { return m.ctx }

// Logger returns the scheduler logger.
func (m *MachineContext) Logger() *log.Logger { return m.logger }

// CurrentStep returns the name of the step the providers are restricted to.
func (m *MachineContext) CurrentStep() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Provider returns the provider of kind if the current step declared it.
// Any other lookup fails with PROVIDER_NOT_VISIBLE.
func (m *MachineContext) Provider(kind provider.Kind) (provider.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.view.Get(kind); ok {
		return p, nil
	}
	return nil, errors.New(errors.ErrCodeProviderNotVisible,
		"step %q did not declare provider %q", m.current, kind)
}

// Lookup returns the visible provider of kind as a T.
func Lookup[T provider.Provider](m *MachineContext, kind provider.Kind) (T, error) {
	var zero T
	p, err := m.Provider(kind)
	if err != nil {
		return zero, err
	}
	t, ok := p.(T)
	if !ok {
		return zero, errors.New(errors.ErrCodeInternal, "provider %q has type %T", kind, p)
	}
	return t, nil
}

// Enter makes exactly the step's declared providers visible and records it
// as the current step. The scheduler calls it before consulting a step;
// callers driving a step by hand do the same.
func (m *MachineContext) Enter(step Step) {
	view := m.providers.Restrict(step.Requires())
	m.mu.Lock()
	m.view = view
	m.current = step.Name()
	m.mu.Unlock()
}

// RequestSkip asks the scheduler to move past the current step without
// waiting for its minimum duration or proceed signal.
func (m *MachineContext) RequestSkip() {
	m.skip.Store(true)
	select {
	case m.skipCh <- struct{}{}:
	default:
	}
}

// SkipRequested reports whether a skip was requested since the current step
// was selected.
func (m *MachineContext) SkipRequested() bool { return m.skip.Load() }

func (m *MachineContext) clearSkip() {
	m.skip.Store(false)
	select {
	case <-m.skipCh:
	default:
	}
}
