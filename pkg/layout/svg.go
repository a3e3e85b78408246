package layout

import (
	"bytes"
	"fmt"
	"html"
)

// RenderSVG draws a placement result as an SVG document. Bounds are
// translated from the centred canvas into viewport coordinates, so the origin
// sits in the middle of the viewport. The blocked regions of opts are drawn
// as dashed outlines.
func RenderSVG(r Result, opts Options) []byte {
	blocked := opts.Blocked
	width, height := r.Width, r.Height
	if width <= 0 || height <= 0 {
		width, height = extent(r, blocked)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <g font-family="sans-serif">` + "\n")

	dx, dy := width/2, height/2
	for _, b := range blocked {
		b = b.Translate(dx, dy)
		fmt.Fprintf(&buf, `    <rect class="blocked" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#999" stroke-dasharray="4 4"/>`+"\n",
			b.X, b.Y, b.W, b.H)
	}
	for _, p := range r.Placements {
		cx, cy := p.Bounds.Translate(dx, dy).Center()
		fmt.Fprintf(&buf, `    <text class="word" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			cx, cy, p.FontSize, html.EscapeString(p.Text))
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

// extent returns a viewport size covering every placement and blocked
// region, for results computed without a canvas.
func extent(r Result, blocked []Rect) (float64, float64) {
	var reach float64
	for _, p := range r.Placements {
		reach = max(reach, p.Bounds.reach())
	}
	for _, b := range blocked {
		reach = max(reach, b.reach())
	}
	side := 2*reach + 20
	return side, side
}
