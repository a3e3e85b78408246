package steps

import (
	"time"

	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Pause shows a title card for its minimum duration.
type Pause struct {
	Base
	title string
	lines []string
}

func newPause(env scheduler.Env, name string, cfg scheduler.Config) (scheduler.Step, error) {
	base, err := NewBase(env, name, cfg, nil, Defaults{MinDuration: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	s := &Pause{Base: base}
	if s.title, err = cfg.String("title", "tweetwall"); err != nil {
		return nil, err
	}
	if s.lines, err = cfg.Strings("lines"); err != nil {
		return nil, err
	}
	return s, nil
}

// ShouldSkip only honours skip_if.
func (s *Pause) ShouldSkip(mc *scheduler.MachineContext) bool { return s.scripted(mc) }

// Run shows the card.
func (s *Pause) Run(_ *scheduler.MachineContext, proceed scheduler.Proceed) error {
	s.present(surface.Scene{Kind: surface.KindTitle, Title: s.title, Lines: s.lines}, proceed)
	return nil
}
