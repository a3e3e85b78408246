package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/tweetwall/pkg/layout"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

const (
	titleSize = 36.0
	lineSize  = 22.0
	margin    = 40.0
)

// SceneSVG draws a scene on a width×height canvas. Word scenes are drawn
// with [layout.RenderSVG]; the title, if any, goes above the cloud.
func SceneSVG(s surface.Scene, width, height float64) []byte {
	if len(s.Words) > 0 {
		r := layout.Result{Placements: s.Words, Width: width, Height: height}
		svg := layout.RenderSVG(r, layout.Options{Width: width, Height: height})
		if s.Title == "" {
			return svg
		}
		return withTitle(svg, s.Title)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <g font-family="sans-serif">` + "\n")
	y := margin + titleSize
	if s.Title != "" {
		fmt.Fprintf(&buf, `    <text class="title" x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold">%s</text>`+"\n",
			margin, y, titleSize, html.EscapeString(s.Title))
		y += titleSize
	}
	for _, line := range s.Lines {
		if y > height-margin {
			break
		}
		y += lineSize * 1.5
		fmt.Fprintf(&buf, `    <text class="line" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			margin, y, lineSize, html.EscapeString(line))
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

// withTitle inserts a title element before the closing tag of svg. The
// title sits in the top margin above the cloud.
func withTitle(svg []byte, title string) []byte {
	el := fmt.Sprintf(`  <text class="title" x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" font-family="sans-serif">%s</text>`+"\n",
		margin, margin, titleSize*0.75, html.EscapeString(title))
	end := bytes.LastIndex(svg, []byte("</svg>"))
	if end < 0 {
		return svg
	}
	out := make([]byte, 0, len(svg)+len(el))
	out = append(out, svg[:end]...)
	out = append(out, el...)
	out = append(out, svg[end:]...)
	return out
}
