package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/tweetwall/pkg/layout"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

func TestToDOT(t *testing.T) {
	steps := []StepNode{
		{Name: "tweets", ID: "tweets", Requires: []string{"tweets"}},
		{Name: "cloud", ID: "wordcloud", Requires: []string{"words", "tweets"}},
		{Name: "pause", ID: "pause"},
	}
	dot := ToDOT(steps, Options{Detailed: true, Loaded: []string{"agenda"}})

	for _, want := range []string{
		`"step:tweets" -> "provider:tweets";`,
		`"step:cloud" -> "provider:words";`,
		`"step:cloud" -> "provider:tweets";`,
		`"step:tweets" -> "step:cloud" [style=invis];`,
		`label="cloud\n(wordcloud)"`,
		`"provider:agenda" [label="agenda", shape=ellipse, fillcolor=lightgrey, style="filled,dashed"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Count(dot, `"provider:tweets" [`) != 1 {
		t.Errorf("provider node should be declared once:\n%s", dot)
	}
	if !strings.Contains(dot, `"step:pause" [label="pause"];`) {
		t.Errorf("step without providers should still be drawn:\n%s", dot)
	}
}

func TestToDOTPlainLabels(t *testing.T) {
	dot := ToDOT([]StepNode{{Name: "cloud", ID: "wordcloud"}}, Options{})
	if strings.Contains(dot, "(wordcloud)") {
		t.Errorf("non-detailed DOT should not include the type id:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT([]StepNode{{Name: "tweets", ID: "tweets", Requires: []string{"tweets"}}}, Options{})
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not SVG: %.100s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 62.00 44.00" width="62" height="44"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("SVG without viewBox changed: %s", got)
	}
}

func TestSceneSVGLines(t *testing.T) {
	s := surface.Scene{Kind: surface.KindTweets, Title: "Latest <tweets>", Lines: []string{"@ann: hi & bye"}}
	svg := string(SceneSVG(s, 800, 600))

	if !strings.Contains(svg, "Latest &lt;tweets&gt;") {
		t.Errorf("title not escaped:\n%s", svg)
	}
	if !strings.Contains(svg, "@ann: hi &amp; bye") {
		t.Errorf("line missing:\n%s", svg)
	}
}

func TestSceneSVGWords(t *testing.T) {
	s := surface.Scene{
		Kind:  surface.KindWordCloud,
		Title: "Trending",
		Words: []layout.Placement{
			{Text: "golang", FontSize: 40, Bounds: layout.CenteredAt(0, 0, 120, 40)},
		},
	}
	svg := string(SceneSVG(s, 800, 600))

	if !strings.Contains(svg, ">golang</text>") {
		t.Errorf("word missing:\n%s", svg)
	}
	if !strings.Contains(svg, ">Trending</text>") {
		t.Errorf("title missing:\n%s", svg)
	}
	if !strings.HasSuffix(strings.TrimSpace(svg), "</svg>") {
		t.Errorf("title inserted after closing tag:\n%s", svg)
	}
}
