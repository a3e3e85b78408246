package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/layout"
	"github.com/matzehuels/tweetwall/pkg/provider"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Steps) == 0 {
		t.Error("default configuration has no steps")
	}
}

func TestLoadConfigWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "tweetwall.toml"), []byte(pauseOnlyTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Steps) != 1 || cfg.Steps[0].ID != "pause" {
		t.Errorf("steps = %+v, want the pause step from tweetwall.toml", cfg.Steps)
	}
}

func TestBuildSteps(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "wall.toml", `
[[steps]]
id = "tweets"
[[steps]]
id = "wordcloud"
[[steps]]
id = "tweets"
`))
	if err != nil {
		t.Fatal(err)
	}

	built, err := buildSteps(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("buildSteps: %v", err)
	}
	var names []string
	for _, s := range built {
		names = append(names, s.Name())
	}
	if got := strings.Join(names, ","); got != "tweets,wordcloud,tweets#2" {
		t.Errorf("names = %s", got)
	}

	kinds, err := checkProviders(cfg, built)
	if err != nil {
		t.Fatalf("checkProviders: %v", err)
	}
	if got := joinKinds(kinds); got != "tweets, words" {
		t.Errorf("kinds = %s", got)
	}
}

func TestBuildStepsInvalid(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "wall.toml", `
[[steps]]
id = "tweets"
[steps.config]
count = "many"
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := buildSteps(cfg, nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestCheckProvidersUnknownKind(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "wall.toml", `
[[providers]]
kind = "weather"
[[steps]]
id = "pause"
`))
	if err != nil {
		t.Fatal(err)
	}
	built, err := buildSteps(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := checkProviders(cfg, built); !errors.Is(err, errors.ErrCodeMissingFactory) {
		t.Errorf("err = %v, want MISSING_FACTORY", err)
	}
}

func TestSourceWarnings(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "wall.toml", pauseOnlyTOML))
	if err != nil {
		t.Fatal(err)
	}
	got := sourceWarnings(cfg, []provider.Kind{provider.KindAgenda, provider.KindVotes})
	if len(got) != 2 {
		t.Errorf("warnings = %v, want agenda and votes", got)
	}
	cfg.Sources.SessionsFile = "agenda.yaml"
	if got := sourceWarnings(cfg, []provider.Kind{provider.KindAgenda}); len(got) != 0 {
		t.Errorf("warnings = %v, want none", got)
	}
}

func TestRunValidate(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	if err := c.runValidate(writeFile(t, "wall.toml", pauseOnlyTOML)); err != nil {
		t.Errorf("valid config: %v", err)
	}
	if err := c.runValidate(writeFile(t, "wall.toml", "[canvas]\nwidth = -1\n")); err == nil {
		t.Error("invalid config accepted")
	}
}

func TestRunGraphDOT(t *testing.T) {
	cfgPath := writeFile(t, "wall.toml", `
[[steps]]
id = "wordcloud"
name = "cloud"
[[steps]]
id = "pause"
`)
	out := filepath.Join(t.TempDir(), "graph.dot")

	c := New(io.Discard, log.InfoLevel)
	if err := c.runGraph(context.Background(), cfgPath, out, "dot", true); err != nil {
		t.Fatalf("runGraph: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"step:cloud" -> "provider:words";`) {
		t.Errorf("DOT = %s", data)
	}

	if err := c.runGraph(context.Background(), cfgPath, out, "png", false); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestReadWords(t *testing.T) {
	txt := writeFile(t, "words.txt", "# trending\ngolang 12\n\ngopher 7.5\nwall\n")
	words, err := readWords(txt)
	if err != nil {
		t.Fatalf("readWords: %v", err)
	}
	want := []layout.Word{{Text: "golang", Weight: 12}, {Text: "gopher", Weight: 7.5}, {Text: "wall", Weight: 1}}
	if len(words) != len(want) {
		t.Fatalf("words = %+v", words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("words[%d] = %+v, want %+v", i, words[i], want[i])
		}
	}

	js := writeFile(t, "words.json", `[{"text":"go","weight":3}]`)
	if words, err := readWords(js); err != nil || len(words) != 1 || words[0].Weight != 3 {
		t.Errorf("readWords(json) = %+v, %v", words, err)
	}

	bad := writeFile(t, "bad.txt", "golang lots\n")
	if _, err := readWords(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad weight: err = %v, want INVALID_INPUT", err)
	}
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("0, -100, 200, 50")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	if r != layout.CenteredAt(0, -100, 200, 50) {
		t.Errorf("parseRect = %+v", r)
	}
	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10"} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q) accepted", bad)
		}
	}
}

func TestRunLayout(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	input := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(input, []byte("golang 10\ngopher 6\nwall 3\ntweets 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	save := filepath.Join(dir, "solution.json")

	c := New(io.Discard, log.InfoLevel)
	ctx := withLogger(context.Background(), c.Logger)
	opts := layoutOptions{
		save:    save,
		blocked: []string{"0,0,100,40"},
		layout:  layout.Options{Width: 800, Height: 600, Seed: 1},
	}
	if err := c.runLayout(ctx, input, opts); err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "words.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(">golang</text>")) {
		t.Errorf("SVG missing word:\n%s", svg)
	}
	data, err := os.ReadFile(save)
	if err != nil {
		t.Fatal(err)
	}
	first, err := layout.UnmarshalSolution(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 4 {
		t.Fatalf("solution has %d words, want 4", len(first))
	}

	// The second run picks the solution up from the cache.
	if err := c.runLayout(ctx, input, opts); err != nil {
		t.Fatalf("second runLayout: %v", err)
	}
	data, err = os.ReadFile(save)
	if err != nil {
		t.Fatal(err)
	}
	second, err := layout.UnmarshalSolution(data)
	if err != nil {
		t.Fatal(err)
	}
	for text, r := range first {
		if second[text] != r {
			t.Errorf("%s moved from %+v to %+v", text, r, second[text])
		}
	}
}

func TestDroppedWords(t *testing.T) {
	prev := layout.Solution{
		"wall":   layout.CenteredAt(0, 0, 40, 20),
		"golang": layout.CenteredAt(0, 40, 60, 20),
		"gopher": layout.CenteredAt(0, -40, 60, 20),
	}
	res := layout.Result{Placements: []layout.Placement{
		{Text: "golang", Bounds: prev["golang"]},
	}}
	got := droppedWords(prev, res)
	if strings.Join(got, ",") != "gopher,wall" {
		t.Errorf("droppedWords = %v, want [gopher wall]", got)
	}
	if got := droppedWords(nil, res); len(got) != 0 {
		t.Errorf("droppedWords without previous solution = %v", got)
	}
}

func TestStepTable(t *testing.T) {
	out := stepTable(nil)
	if !strings.Contains(out, "Requires") {
		t.Errorf("table missing header:\n%s", out)
	}
}

func TestWriteCompletion(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf bytes.Buffer
		if err := writeCompletion(root, shell, &buf); err != nil {
			t.Errorf("%s: %v", shell, err)
		}
		if buf.Len() == 0 {
			t.Errorf("%s: empty completion script", shell)
		}
	}
}
