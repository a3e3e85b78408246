package steps

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tweetwall/pkg/cache"
	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/layout"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testEnv(rec *surface.Recorder) scheduler.Env {
	return scheduler.Env{
		Surface: rec,
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
		Now:     func() time.Time { return testNow },
	}
}

// build constructs one step through the registry and enters it.
func build(t *testing.T, env scheduler.Env, set *provider.Set, id string, cfg scheduler.Config) (scheduler.Step, *scheduler.MachineContext) {
	t.Helper()
	steps, err := NewRegistry().Build(env, []scheduler.Entry{{ID: id, Config: cfg}})
	require.NoError(t, err)
	mc := scheduler.NewMachineContext(context.Background(), set, env.Logger)
	mc.Enter(steps[0])
	return steps[0], mc
}

// run executes the step and waits for its proceed signal.
func run(t *testing.T, step scheduler.Step, mc *scheduler.MachineContext) {
	t.Helper()
	done := make(chan struct{})
	var once bool
	require.NoError(t, step.Run(mc, func() {
		if !once {
			once = true
			close(done)
		}
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("step never proceeded")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"agenda", "pause", "tweets", "votes", "wordcloud"}, reg.IDs())

	kinds, err := reg.RequiredKinds([]scheduler.Entry{{ID: "wordcloud"}, {ID: "tweets"}, {ID: "pause"}})
	require.NoError(t, err)
	assert.Equal(t, []provider.Kind{provider.KindTweets, provider.KindWords}, kinds)

	// Registering twice replaces the types.
	require.NoError(t, Register(reg))
}

func TestBaseConfig(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	tests := []struct {
		name string
		cfg  scheduler.Config
	}{
		{"bad duration", scheduler.Config{"min_duration": "later"}},
		{"negative duration", scheduler.Config{"min_duration": "-1s"}},
		{"bad ui_thread", scheduler.Config{"ui_thread": "yes"}},
		{"bad skip_if", scheduler.Config{"skip_if": "((("}},
		{"bad requires", scheduler.Config{"requires": []any{"Not Valid"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry().Build(testEnv(rec), []scheduler.Entry{{ID: "pause", Config: tt.cfg}})
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
		})
	}

	_, err := NewRegistry().Build(scheduler.Env{}, []scheduler.Entry{{ID: "pause"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "missing surface")
}

func TestBaseDefaultsAndOverrides(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	step, _ := build(t, testEnv(rec), nil, "pause", scheduler.Config{
		"min_duration": "3s",
		"ui_thread":    true,
		"requires":     []any{"votes"},
	})
	assert.Equal(t, "pause", step.Name())
	assert.Equal(t, 3*time.Second, step.MinDuration())
	assert.True(t, step.UIThread())
	assert.Equal(t, []provider.Kind{provider.KindVotes}, step.Requires())

	tweets, _ := build(t, testEnv(rec), nil, "tweets", nil)
	assert.Equal(t, 10*time.Second, tweets.MinDuration())
	assert.True(t, tweets.UIThread())
}

func TestSkipIf(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	step, mc := build(t, testEnv(rec), nil, "pause", scheduler.Config{"skip_if": "props.quiet === true || hour < 8"})
	assert.False(t, step.ShouldSkip(mc))

	mc.Properties.Set("quiet", true)
	assert.True(t, step.ShouldSkip(mc))

	broken, mc := build(t, testEnv(rec), nil, "pause", scheduler.Config{"skip_if": "props.a.b"})
	assert.False(t, broken.ShouldSkip(mc), "script errors must not skip")
}

func TestPauseShowsTitle(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	step, mc := build(t, testEnv(rec), nil, "pause", scheduler.Config{
		"title": "Coffee break",
		"lines": []any{"back at 10:30"},
	})
	assert.False(t, step.ShouldSkip(mc))
	run(t, step, mc)

	cur, ok := rec.Current()
	require.True(t, ok)
	assert.Equal(t, surface.KindTitle, cur.Kind)
	assert.Equal(t, "Coffee break", cur.Title)
	assert.Equal(t, []string{"back at 10:30"}, cur.Lines)
	assert.Equal(t, "pause", cur.Step)
}

func TestTweetsStep(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	window := provider.NewTweetWindow(10)
	set := provider.NewSet(window)
	step, mc := build(t, testEnv(rec), set, "tweets", scheduler.Config{"count": 2, "animation": "10ms"})

	assert.True(t, step.ShouldSkip(mc), "empty window")

	for i, text := range []string{"first", "second\nline", "third"} {
		window.OnTweet(content.Tweet{ID: string(rune('a' + i)), Author: "ann", Text: text, CreatedAt: testNow.Add(time.Duration(i) * time.Minute)})
	}
	assert.False(t, step.ShouldSkip(mc))

	start := time.Now()
	run(t, step, mc)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond, "proceeds after the animation")

	cur, ok := rec.Current()
	require.True(t, ok)
	assert.Equal(t, surface.KindTweets, cur.Kind)
	assert.Equal(t, []string{"@ann: third", "@ann: second line"}, cur.Lines)
}

func TestStepWithoutProviderFails(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	step, mc := build(t, testEnv(rec), provider.NewSet(), "tweets", nil)
	assert.True(t, step.ShouldSkip(mc))

	err := step.Run(mc, func() {})
	assert.True(t, errors.Is(err, errors.ErrCodeProviderNotVisible))
}

func TestAgendaStep(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	sessions := []content.Session{
		{ID: "1", Title: "Keynote", Speaker: "Rob", Room: "A", Start: testNow.Add(-30 * time.Minute), End: testNow.Add(30 * time.Minute)},
		{ID: "2", Title: "Generics", Room: "B", Start: testNow.Add(time.Hour), End: testNow.Add(2 * time.Hour)},
		{ID: "0", Title: "Breakfast", Start: testNow.Add(-2 * time.Hour), End: testNow.Add(-time.Hour)},
	}
	agenda := provider.NewAgenda(staticSessions(sessions), provider.AgendaOptions{})
	set := provider.NewSet(agenda)
	step, mc := build(t, testEnv(rec), set, "agenda", nil)

	assert.True(t, step.ShouldSkip(mc), "no sessions loaded yet")
	require.NoError(t, agenda.Run(context.Background()))
	assert.False(t, step.ShouldSkip(mc))

	run(t, step, mc)
	cur, _ := rec.Current()
	require.Len(t, cur.Lines, 2)
	assert.Equal(t, "now   Keynote - Rob (A)", cur.Lines[0])
	assert.Equal(t, "11:00 Generics (B)", cur.Lines[1])
}

type staticSessions []content.Session

func (s staticSessions) Sessions(context.Context) ([]content.Session, error) {
	return append([]content.Session(nil), s...), nil
}

func TestVotesStep(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	votes := provider.NewVotes(content.StaticVotes{
		{SessionID: "1", Title: "Keynote", Score: 4.2, Votes: 10},
		{SessionID: "2", Title: "Generics", Score: 4.8, Votes: 5},
		{SessionID: "3", Title: "Testing", Score: 3.9, Votes: 7},
	}, time.Minute, 0)
	set := provider.NewSet(votes)
	step, mc := build(t, testEnv(rec), set, "votes", scheduler.Config{"count": 2})

	assert.True(t, step.ShouldSkip(mc))
	require.NoError(t, votes.Run(context.Background()))
	assert.False(t, step.ShouldSkip(mc))

	run(t, step, mc)
	cur, _ := rec.Current()
	assert.Equal(t, []string{"1. Generics  4.8 (5 votes)", "2. Keynote  4.2 (10 votes)"}, cur.Lines)
}

var tweetSeq atomic.Int64

func feedWords(f *provider.WordFrequency, texts ...string) {
	for _, text := range texts {
		f.OnTweet(content.Tweet{ID: fmt.Sprint(tweetSeq.Add(1)), Text: text})
	}
}

func TestWordCloudStep(t *testing.T) {
	rec := surface.NewRecorder(1000, 600)
	words := provider.NewWordFrequency(provider.WordOptions{})
	set := provider.NewSet(words)
	step, mc := build(t, testEnv(rec), set, "wordcloud", scheduler.Config{
		"min_words": 3,
		"seed":      7,
		"logo":      map[string]any{"width": 100, "height": 60},
	})

	feedWords(words, "gopher conference")
	assert.True(t, step.ShouldSkip(mc), "too few words")

	feedWords(words, "gopher conference", "gopher keynote generics", "gopher")
	assert.False(t, step.ShouldSkip(mc))

	run(t, step, mc)
	cur, ok := rec.Current()
	require.True(t, ok)
	assert.Equal(t, surface.KindWordCloud, cur.Kind)
	require.Len(t, cur.Words, 4)
	assert.Equal(t, "gopher", cur.Words[0].Text)

	logo := layout.CenteredAt(0, 0, 100, 60)
	res := layout.Result{Placements: cur.Words}
	assert.Empty(t, layout.Overlaps(res, []layout.Rect{logo}))

	// A second run keeps every word where it was.
	first := step.(*WordCloud).Solution()
	run(t, step, mc)
	assert.Equal(t, first, step.(*WordCloud).Solution())
}

func TestWordCloudPersistsSolution(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	rec := surface.NewRecorder(1000, 600)
	env := testEnv(rec)
	env.Cache = c

	words := provider.NewWordFrequency(provider.WordOptions{})
	feedWords(words, "gopher conference keynote", "gopher generics", "gopher")
	set := provider.NewSet(words)

	first, mc := build(t, env, set, "wordcloud", nil)
	run(t, first, mc)
	want := first.(*WordCloud).Solution()
	require.Len(t, want, 4)

	// A fresh step, as after a restart, starts from the persisted solution.
	second, mc := build(t, env, set, "wordcloud", nil)
	run(t, second, mc)
	got := second.(*WordCloud).Solution()
	assert.Equal(t, want, got)

	cur, _ := rec.Current()
	for _, p := range cur.Words {
		assert.True(t, p.Reused, "%s was placed again", p.Text)
	}
}
