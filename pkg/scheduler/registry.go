package scheduler

import (
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/cache"
	"github.com/matzehuels/tweetwall/pkg/config"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Config is the per-step configuration blob.
type Config = config.Blob

// Env carries the shared collaborators step factories may use.
type Env struct {
	Surface surface.Surface
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time

	// Width and Height of the canvas steps render to.
	Width, Height float64
}

// Clock returns e.Now or time.Now.
func (e Env) Clock() func() time.Time {
	if e.Now != nil {
		return e.Now
	}
	return time.Now
}

// Factory constructs a step from its configuration. name is the step's
// display name, unique within a wall.
type Factory func(env Env, name string, cfg Config) (Step, error)

// StepType describes one kind of step.
type StepType struct {
	ID          string
	Description string

	// Requires lists the provider kinds every step of this type reads.
	Requires []provider.Kind

	New Factory
}

// Entry is one configured step.
type Entry struct {
	ID     string
	Name   string
	Config Config
}

// Registry maps step ids to step types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]StepType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]StepType)}
}

// Register adds a step type. Re-registering an id replaces the previous
// type.
func (r *Registry) Register(t StepType) error {
	if err := errors.ValidateIdentifier("step id", t.ID); err != nil {
		return err
	}
	if t.New == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "step type %q has no factory", t.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.ID] = t
	return nil
}

// Lookup returns the step type for id, or an UNKNOWN_STEP error.
func (r *Registry) Lookup(id string) (StepType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	if !ok {
		return StepType{}, errors.New(errors.ErrCodeUnknownStep, "unknown step type %q", id)
	}
	return t, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Types returns the registered step types sorted by id.
func (r *Registry) Types() []StepType {
	ids := r.IDs()
	out := make([]StepType, 0, len(ids))
	for _, id := range ids {
		t, _ := r.Lookup(id)
		out = append(out, t)
	}
	return out
}

// RequiredKinds returns the union of the provider kinds the configured
// steps declare, sorted. Unknown ids fail with UNKNOWN_STEP.
func (r *Registry) RequiredKinds(entries []Entry) ([]provider.Kind, error) {
	seen := make(map[provider.Kind]bool)
	for _, e := range entries {
		t, err := r.Lookup(e.ID)
		if err != nil {
			return nil, err
		}
		for _, k := range t.Requires {
			seen[k] = true
		}
	}
	kinds := make([]provider.Kind, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds, nil
}

// Build constructs the configured steps in order. Display names default to
// the step id and are made unique with a numeric suffix.
func (r *Registry) Build(env Env, entries []Entry) ([]Step, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySteps, "no steps configured")
	}
	names := make(map[string]int, len(entries))
	steps := make([]Step, 0, len(entries))
	for i, e := range entries {
		t, err := r.Lookup(e.ID)
		if err != nil {
			return nil, err
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		names[name]++
		if n := names[name]; n > 1 {
			name = name + "#" + strconv.Itoa(n)
		}
		cfg := e.Config
		if cfg == nil {
			cfg = Config{}
		}
		s, err := t.New(env, name, cfg)
		if err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "step %d (%s)", i, e.ID)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// KindsOf returns the union of the provider kinds the steps declare, sorted.
func KindsOf(steps []Step) []provider.Kind {
	var kinds []provider.Kind
	for _, s := range steps {
		for _, k := range s.Requires() {
			if !slices.Contains(kinds, k) {
				kinds = append(kinds, k)
			}
		}
	}
	slices.Sort(kinds)
	return kinds
}
