package scheduler

import "sync"

// Executor is the exclusive rendering context. Execute queues fn to run
// there and returns without waiting; functions run one at a time in the
// order they were queued.
type Executor interface {
	Execute(fn func())
}

// LoopExecutor runs queued functions on one dedicated goroutine.
type LoopExecutor struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewLoopExecutor starts the executor goroutine.
func NewLoopExecutor() *LoopExecutor {
	e := &LoopExecutor{
		tasks: make(chan func(), 16),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *LoopExecutor) loop() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.tasks:
			fn()
		case <-e.quit:
			return
		}
	}
}

// Execute queues fn. After Close it is dropped.
func (e *LoopExecutor) Execute(fn func()) {
	select {
	case e.tasks <- fn:
	case <-e.quit:
	}
}

// Close stops the goroutine after the running function returns.
func (e *LoopExecutor) Close() {
	e.once.Do(func() { close(e.quit) })
	<-e.done
}

// inlineExecutor runs functions on the caller's goroutine.
type inlineExecutor struct{}

func (inlineExecutor) Execute(fn func()) { fn() }
