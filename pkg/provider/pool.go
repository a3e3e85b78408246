package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/observability"
)

type task struct {
	kind     Kind
	schedule Schedule
	run      func(ctx context.Context) error
	next     time.Time
}

// pool runs scheduled provider tasks on a single worker goroutine. Tasks are
// short and infrequent, so runs never overlap.
type pool struct {
	tasks  []*task
	logger *log.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func startPool(ctx context.Context, tasks []*task, logger *log.Logger) *pool {
	ctx, cancel := context.WithCancel(ctx)
	p := &pool{tasks: tasks, logger: logger, cancel: cancel, done: make(chan struct{})}
	now := time.Now()
	for _, t := range tasks {
		t.next = now.Add(t.schedule.InitialDelay)
	}
	go p.loop(ctx)
	return p
}

func (p *pool) loop(ctx context.Context) {
	defer close(p.done)
	if len(p.tasks) == 0 {
		<-ctx.Done()
		return
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		t := p.earliest()
		timer.Reset(time.Until(t.next))
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		scheduled := t.next
		p.runOnce(ctx, t)

		switch t.schedule.Mode {
		case FixedDelay:
			t.next = time.Now().Add(t.schedule.Interval)
		default:
			// A run that overran its slot starts the next one immediately
			// instead of bursting to catch up.
			t.next = scheduled.Add(t.schedule.Interval)
			if now := time.Now(); t.next.Before(now) {
				t.next = now
			}
		}
	}
}

func (p *pool) earliest() *task {
	best := p.tasks[0]
	for _, t := range p.tasks[1:] {
		if t.next.Before(best.next) {
			best = t
		}
	}
	return best
}

// runOnce executes one run and contains any error or panic.
func (p *pool) runOnce(ctx context.Context, t *task) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.run(ctx)
	}()
	elapsed := time.Since(start)

	observability.Provider().OnProviderRun(ctx, string(t.kind), elapsed, err)
	if err != nil && ctx.Err() == nil {
		p.logger.Error("scheduled provider run failed", "provider", t.kind, "error", err)
		return
	}
	p.logger.Debug("scheduled provider run", "provider", t.kind, "duration", elapsed)
}

func (p *pool) stop() {
	p.cancel()
	<-p.done
}

