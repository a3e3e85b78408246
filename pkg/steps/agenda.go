package steps

import (
	"fmt"
	"time"

	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Agenda shows the sessions in progress and the next ones.
type Agenda struct {
	Base
	count int
	title string
}

func newAgenda(env scheduler.Env, name string, cfg scheduler.Config) (scheduler.Step, error) {
	base, err := NewBase(env, name, cfg, []provider.Kind{provider.KindAgenda}, Defaults{
		MinDuration: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	s := &Agenda{Base: base}
	if s.count, err = positive(cfg, "count", 5); err != nil {
		return nil, err
	}
	if s.title, err = cfg.String("title", "Up next"); err != nil {
		return nil, err
	}
	return s, nil
}

// ShouldSkip skips when nothing is running or coming up.
func (s *Agenda) ShouldSkip(mc *scheduler.MachineContext) bool {
	if s.scripted(mc) {
		return true
	}
	a, err := scheduler.Lookup[*provider.Agenda](mc, provider.KindAgenda)
	if err != nil {
		return true
	}
	now := s.now()
	return len(a.Current(now)) == 0 && len(a.Upcoming(now, 1)) == 0
}

// Run shows the agenda.
func (s *Agenda) Run(mc *scheduler.MachineContext, proceed scheduler.Proceed) error {
	a, err := scheduler.Lookup[*provider.Agenda](mc, provider.KindAgenda)
	if err != nil {
		return err
	}
	now := s.now()
	var lines []string
	for _, sess := range a.Current(now) {
		lines = append(lines, sessionLine("now", sess))
	}
	for _, sess := range a.Upcoming(now, s.count) {
		lines = append(lines, sessionLine(sess.Start.Format("15:04"), sess))
	}
	s.present(surface.Scene{Kind: surface.KindAgenda, Title: s.title, Lines: lines}, proceed)
	return nil
}

func sessionLine(when string, s content.Session) string {
	line := fmt.Sprintf("%-5s %s", when, s.Title)
	if s.Speaker != "" {
		line += " - " + s.Speaker
	}
	if s.Room != "" {
		line += " (" + s.Room + ")"
	}
	return line
}
