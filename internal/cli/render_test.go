package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "json", []string{"json"}},
		{"multiple formats", "svg,json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"svg", "json"}, false},
		{"invalid format", []string{"png"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestWriteScene(t *testing.T) {
	dir := t.TempDir()
	s := surface.Scene{Kind: surface.KindTitle, Step: "pause #2", Title: "Coffee"}

	files, err := writeScene(dir, 7, s, []string{"svg", "json"}, 800, 600)
	if err != nil {
		t.Fatalf("writeScene: %v", err)
	}
	want := []string{
		filepath.Join(dir, "007-pause_2.svg"),
		filepath.Join(dir, "007-pause_2.json"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files = %v, want %v", files, want)
	}
	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"title": "Coffee"`) {
		t.Errorf("scene JSON = %s", data)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	tweets []content.Tweet
}

func (p *recordingPublisher) Publish(_ context.Context, t content.Tweet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tweets = append(p.tweets, t)
	return nil
}

func TestPublishTweets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.jsonl")
	data := `{"id":"1","author":"ann","text":"hello","created_at":"2026-05-01T10:00:00Z"}

{"author":"bob","text":"no id"}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	pub := &recordingPublisher{}
	n, err := publishTweets(context.Background(), pub, path)
	if err != nil {
		t.Fatalf("publishTweets: %v", err)
	}
	if n != 2 || len(pub.tweets) != 2 {
		t.Fatalf("published %d (%d recorded), want 2", n, len(pub.tweets))
	}
	if pub.tweets[0].ID != "1" {
		t.Errorf("explicit id replaced: %q", pub.tweets[0].ID)
	}
	if pub.tweets[1].ID == "" || pub.tweets[1].CreatedAt.IsZero() {
		t.Errorf("missing id or timestamp not filled: %+v", pub.tweets[1])
	}
}

func TestPublishTweetsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := publishTweets(context.Background(), &recordingPublisher{}, path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad line: err = %v, want INVALID_INPUT", err)
	}
	if _, err := publishTweets(context.Background(), nil, path); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("nil publisher: err = %v, want UNSUPPORTED", err)
	}
}

const pauseOnlyTOML = `
[cache]
backend = "none"

[[steps]]
id = "pause"
[steps.config]
min_duration = "20ms"
title = "hello wall"
`

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tweetwall.toml")
	if err := os.WriteFile(cfgPath, []byte(pauseOnlyTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "scenes")

	c := New(io.Discard, log.InfoLevel)
	ctx := withLogger(context.Background(), c.Logger)
	opts := renderOptions{
		config:   cfgPath,
		output:   out,
		formats:  []string{"json"},
		duration: 200 * time.Millisecond,
	}
	if err := c.runRender(ctx, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("wrote %d scenes, want at least 2", len(entries))
	}
	first, err := os.ReadFile(filepath.Join(out, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Name() != "001-pause.json" || !strings.Contains(string(first), "hello wall") {
		t.Errorf("first scene %s = %s", entries[0].Name(), first)
	}
}
