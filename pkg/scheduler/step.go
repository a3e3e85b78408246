package scheduler

import (
	"time"

	"github.com/matzehuels/tweetwall/pkg/provider"
)

// Proceed signals that the current step has finished. It may be called from
// any goroutine and any number of times; only the first call counts, and
// calls arriving after the scheduler gave up on the step are ignored.
type Proceed func()

// Step is one unit of presentation work. Steps are constructed once and
// compared by identity.
type Step interface {
	// Name identifies the step in logs and status output.
	Name() string

	// Requires lists the provider kinds the step reads. Only these are
	// visible through the MachineContext while the step runs.
	Requires() []provider.Kind

	// ShouldSkip reports whether the step has nothing to show right now.
	ShouldSkip(mc *MachineContext) bool

	// MinDuration is the shortest time the step stays on screen.
	MinDuration() time.Duration

	// UIThread reports whether Run must execute on the rendering executor.
	UIThread() bool

	// Run starts the step. It may call proceed before returning or later
	// from another goroutine. A returned error counts as a proceed.
	Run(mc *MachineContext, proceed Proceed) error
}
