package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Starting providers...")
	s.start()
	time.Sleep(200 * time.Millisecond)
	s.stop()
	s.stop()

	out := buf.String()
	if !strings.Contains(out, "Starting providers...") {
		t.Errorf("frame missing message: %q", out)
	}
	if !strings.HasSuffix(out, " \r") {
		t.Errorf("line not cleared: %q", out)
	}
	if s.interrupted() {
		t.Error("stop should not count as an interruption")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &bytes.Buffer{}, "Rendering graph...")
	s.start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context ended")
	}
	if !s.interrupted() {
		t.Error("interrupted() = false after parent cancel")
	}
	s.stop()
}

func TestSpinnerLine(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Loading")
	tests := []struct {
		frame   int
		elapsed time.Duration
		want    string
	}{
		{0, 0, "Loading (0.0s)"},
		{3, 1500 * time.Millisecond, "Loading (1.5s)"},
		{len(spinnerFrames) + 1, 12 * time.Second, "Loading (12.0s)"},
	}
	for _, tt := range tests {
		got, width := s.line(tt.frame, tt.elapsed)
		if !strings.Contains(got, tt.want) {
			t.Errorf("line(%d, %v) = %q, want %q", tt.frame, tt.elapsed, got, tt.want)
		}
		if width != len(tt.want)+2 {
			t.Errorf("line(%d, %v) width = %d, want %d", tt.frame, tt.elapsed, width, len(tt.want)+2)
		}
	}
}

func TestSpin(t *testing.T) {
	if err := spin(context.Background(), "Working", "failed", func() error { return nil }); err != nil {
		t.Errorf("spin = %v, want nil", err)
	}
	boom := errors.New("boom")
	if err := spin(context.Background(), "Working", "failed", func() error { return boom }); err != boom {
		t.Errorf("spin = %v, want %v", err, boom)
	}
}
