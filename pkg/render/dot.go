package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// StepNode is one configured step and the provider kinds it reads.
type StepNode struct {
	Name     string
	ID       string
	Requires []string
}

// Options configures diagram rendering.
type Options struct {
	// Detailed adds the step type id below each step name.
	Detailed bool

	// Loaded marks provider kinds that are configured but read by no step.
	// They are drawn dashed.
	Loaded []string
}

// ToDOT converts the steps of a wall to Graphviz DOT. Steps are drawn in
// presentation order from left to right, with an edge to every provider
// kind they require.
func ToDOT(steps []StepNode, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	buf.WriteString("  { rank=same;\n")
	for _, s := range steps {
		label := s.Name
		if opts.Detailed && s.ID != "" && s.ID != s.Name {
			label += "\n(" + s.ID + ")"
		}
		fmt.Fprintf(&buf, "    %q [label=%q];\n", stepID(s), label)
	}
	buf.WriteString("  }\n")

	used := map[string]bool{}
	var kinds []string
	for _, s := range steps {
		for _, k := range s.Requires {
			if !used[k] {
				used[k] = true
				kinds = append(kinds, k)
			}
		}
	}
	for _, k := range opts.Loaded {
		if !used[k] {
			kinds = append(kinds, k)
		}
	}
	slices.Sort(kinds)

	buf.WriteString("\n")
	for _, k := range kinds {
		attrs := []string{fmt.Sprintf("label=%q", k), "shape=ellipse", "fillcolor=lightgrey"}
		if !used[k] {
			attrs = append(attrs, "style=\"filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", providerID(k), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range steps {
		if i > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [style=invis];\n", stepID(steps[i-1]), stepID(steps[i]))
		}
	}
	for _, s := range steps {
		for _, k := range s.Requires {
			fmt.Fprintf(&buf, "  %q -> %q;\n", stepID(s), providerID(k))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func stepID(s StepNode) string { return "step:" + s.Name }
func providerID(kind string) string { return "provider:" + kind }

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the point-based size Graphviz emits with a
// unitless one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
