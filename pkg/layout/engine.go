package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/observability"
)

// Engine runs placements with fixed options and reports them to the logger
// and the layout hooks. It holds no state between runs; callers keep the
// previous Solution themselves.
type Engine struct {
	Options Options
	Logger  *log.Logger
}

// NewEngine creates an engine. If logger is nil, log.Default() is used.
func NewEngine(opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Options: opts.withDefaults(), Logger: logger}
}

// Layout places words, reusing prev where possible.
func (e *Engine) Layout(ctx context.Context, words []Word, prev Solution) Result {
	start := time.Now()
	res := Place(words, prev, e.Options)
	elapsed := time.Since(start)

	reused := res.Reused()
	if res.Finishing {
		e.Logger.Debug("layout entered finishing mode",
			"items", len(res.Placements),
			"width", e.Options.Width,
			"height", e.Options.Height)
	}
	e.Logger.Debug("computed layout",
		"items", len(res.Placements),
		"reused", reused,
		"duration", elapsed)

	observability.Layout().OnLayoutComplete(ctx, len(res.Placements), reused, res.Finishing, elapsed)
	return res
}
