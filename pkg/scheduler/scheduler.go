package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/observability"
	"github.com/matzehuels/tweetwall/pkg/provider"
)

// DefaultProceedTimeout bounds the wait for a step's proceed signal.
const DefaultProceedTimeout = 60 * time.Second

// maxIdlePause caps the pause after a pass in which every step skipped.
const maxIdlePause = time.Second

// Options configures a Scheduler.
type Options struct {
	// ProceedTimeout is the longest wait for a proceed signal
	// (default DefaultProceedTimeout).
	ProceedTimeout time.Duration

	// Executor runs steps that require the rendering context. Without one,
	// such steps run on the scheduler goroutine.
	Executor Executor

	Logger *log.Logger
}

// Stats is a snapshot of the scheduler counters.
type Stats struct {
	Running  bool      `json:"running"`
	Current  string    `json:"current,omitempty"`
	Started  time.Time `json:"started,omitzero"`
	Executed uint64    `json:"executed"`
	Skipped  uint64    `json:"skipped"`
	TimedOut uint64    `json:"timed_out"`
	Failed   uint64    `json:"failed"`
}

// Scheduler runs the step loop.
type Scheduler struct {
	steps  []Step
	opts   Options
	logger *log.Logger
	mc     *MachineContext

	index int

	started atomic.Bool
	done    chan struct{}

	mu    sync.Mutex
	stats Stats
}

// New validates the step list and creates a scheduler. An empty list is a
// fatal EMPTY_STEPS error.
func New(steps []Step, providers *provider.Set, opts Options) (*Scheduler, error) {
	if len(steps) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySteps, "no steps configured")
	}
	for i, s := range steps {
		if s == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "step %d is nil", i)
		}
	}
	if opts.ProceedTimeout <= 0 {
		opts.ProceedTimeout = DefaultProceedTimeout
	}
	if opts.Executor == nil {
		opts.Executor = inlineExecutor{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Scheduler{
		steps:  append([]Step(nil), steps...),
		opts:   opts,
		logger: opts.Logger,
		mc:     NewMachineContext(context.Background(), providers, opts.Logger),
		done:   make(chan struct{}),
	}, nil
}

// Context returns the machine context shared by all steps.
func (s *Scheduler) Context() *MachineContext { return s.mc }

// Steps returns the configured steps in order.
func (s *Scheduler) Steps() []Step { return append([]Step(nil), s.steps...) }

// Start launches the loop on its own goroutine and returns immediately.
// The loop runs until ctx is cancelled. Start may be called once.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInternal, "scheduler already started")
	}
	s.mc.ctx = ctx

	s.mu.Lock()
	s.stats.Running = true
	s.stats.Started = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		defer func() {
			s.mu.Lock()
			s.stats.Running = false
			s.stats.Current = ""
			s.mu.Unlock()
		}()
		s.logger.Info("scheduler started", "steps", len(s.steps), "proceed_timeout", s.opts.ProceedTimeout)
		for s.advance(ctx) {
		}
		s.logger.Info("scheduler stopped")
	}()
	return nil
}

// Done is closed when the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Wait blocks until the loop has exited.
func (s *Scheduler) Wait() { <-s.done }

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RequestSkip ends the current step early.
func (s *Scheduler) RequestSkip() { s.mc.RequestSkip() }

// advance runs one pass: select, execute, dwell, await proceed. It returns
// false once ctx is done.
func (s *Scheduler) advance(ctx context.Context) bool {
	step, ok := s.next(ctx)
	if !ok {
		return false
	}
	name := step.Name()
	s.mc.clearSkip()

	s.mu.Lock()
	s.stats.Current = name
	s.mu.Unlock()

	minDuration := s.minDuration(step)
	start := time.Now()
	proceed, proceeded := newProceed()

	s.logger.Debug("running step", "step", name, "min_duration", minDuration, "ui_thread", step.UIThread())
	observability.Scheduler().OnStepStart(ctx, name)

	err := s.execute(ctx, step, proceed)
	if err != nil {
		s.logger.Error("step failed", "step", name, "error", err)
		proceed()
	}

	if rest := minDuration - time.Since(start); rest > 0 {
		if !s.sleep(ctx, rest) {
			return false
		}
	}

	timedOut := false
	select {
	case <-proceeded:
	case <-s.mc.skipCh:
		s.logger.Info("step skipped on request", "step", name)
	case <-time.After(s.opts.ProceedTimeout):
		timedOut = true
		s.logger.Warn("step did not proceed in time", "step", name, "timeout", s.opts.ProceedTimeout)
	case <-ctx.Done():
		return false
	}

	elapsed := time.Since(start)
	observability.Scheduler().OnStepComplete(ctx, name, elapsed, err, timedOut)

	s.mu.Lock()
	s.stats.Executed++
	if err != nil {
		s.stats.Failed++
	}
	if timedOut {
		s.stats.TimedOut++
	}
	s.mu.Unlock()
	return true
}

// next returns the next step that does not want to be skipped. A full
// round of skips is followed by a short pause so an all-skip configuration
// does not spin.
func (s *Scheduler) next(ctx context.Context) (Step, bool) {
	for {
		for range len(s.steps) {
			if ctx.Err() != nil {
				return nil, false
			}
			step := s.steps[s.index]
			s.index = (s.index + 1) % len(s.steps)

			s.mc.Enter(step)
			if !s.shouldSkip(step) {
				return step, true
			}
			s.logger.Debug("skipping step", "step", step.Name())
			observability.Scheduler().OnStepSkipped(ctx, step.Name())
			s.mu.Lock()
			s.stats.Skipped++
			s.mu.Unlock()
		}

		pause := min(s.opts.ProceedTimeout/10, maxIdlePause)
		s.logger.Debug("every step skipped, pausing", "pause", pause)
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(pause):
		}
	}
}

// shouldSkip evaluates the skip predicate. A panic counts as "do not skip".
func (s *Scheduler) shouldSkip(step Step) (skip bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("skip predicate panicked", "step", step.Name(), "panic", r)
			skip = false
		}
	}()
	return step.ShouldSkip(s.mc)
}

func (s *Scheduler) minDuration(step Step) (d time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("min duration panicked", "step", step.Name(), "panic", r)
			d = 0
		}
	}()
	return max(step.MinDuration(), 0)
}

// execute runs the step body inline or on the executor and waits for its
// synchronous part to return. Panics become STEP_PANIC errors.
func (s *Scheduler) execute(ctx context.Context, step Step, proceed Proceed) error {
	run := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Debug("step panic stack", "step", step.Name(), "stack", string(debug.Stack()))
				err = errors.New(errors.ErrCodeStepPanic, "step %q panicked: %v", step.Name(), r)
			}
		}()
		if err := step.Run(s.mc, proceed); err != nil {
			return errors.Wrap(errors.ErrCodeStepFailed, err, "step %q", step.Name())
		}
		return nil
	}

	if !step.UIThread() {
		return run()
	}

	var err error
	returned := make(chan struct{})
	s.opts.Executor.Execute(func() {
		defer close(returned)
		err = run()
	})
	select {
	case <-returned:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sleep waits for d, returning early on a skip request. It returns false
// if ctx ended.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.mc.skipCh:
		// Re-arm so the proceed wait also sees the request.
		s.mc.RequestSkip()
	case <-ctx.Done():
		return false
	}
	return true
}

// newProceed returns a Proceed bound to one execution and the channel it
// closes. Signals for earlier executions close channels nobody waits on.
func newProceed() (Proceed, <-chan struct{}) {
	ch := make(chan struct{})
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }, ch
}

// String describes the scheduler for logs.
func (s *Scheduler) String() string {
	return fmt.Sprintf("scheduler(%d steps, timeout %v)", len(s.steps), s.opts.ProceedTimeout)
}
