package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner draws a single progress line with the elapsed time until it is
// stopped or its parent context ends.
type spinner struct {
	out     io.Writer
	message string
	begin   time.Time

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu    sync.Mutex
	drawn int // visible width of the last frame
}

func newSpinner(ctx context.Context, out io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		out:     out,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// spin runs fn while a spinner shows message on stderr. When fn fails the
// line is replaced by failMsg, unless ctx ended first, and fn's error is
// returned.
func spin(ctx context.Context, message, failMsg string, fn func() error) error {
	s := newSpinner(ctx, os.Stderr, message)
	s.start()
	err := fn()
	s.stop()
	if err != nil && !s.interrupted() {
		printError("%s", failMsg)
	}
	return err
}

func (s *spinner) start() {
	s.begin = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(i, time.Since(s.begin))
			}
		}
	}()
}

// line formats frame i after elapsed, returning the styled text and its
// visible width.
func (s *spinner) line(i int, elapsed time.Duration) (string, int) {
	frame := spinnerFrames[i%len(spinnerFrames)]
	text := fmt.Sprintf("%s (%.1fs)", s.message, elapsed.Seconds())
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(text), len(text) + 2
}

func (s *spinner) draw(i int, elapsed time.Duration) {
	styled, width := s.line(i, elapsed)
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s", styled)
	s.drawn = max(s.drawn, width)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

// interrupted reports whether the parent context ended before stop.
func (s *spinner) interrupted() bool {
	return s.parent.Err() != nil
}
