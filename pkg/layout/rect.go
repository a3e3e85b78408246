package layout

// Rect is an axis-aligned rectangle in canvas units. X and Y address the
// top-left corner; Y grows downwards. The canvas itself is centred on the
// origin, so most placed rectangles have negative coordinates somewhere.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CenteredAt returns a w×h rectangle whose center is (cx, cy).
func CenteredAt(cx, cy, w, h float64) Rect {
	return Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}

// Canvas returns the rectangle spanned by a centred canvas of the given size.
func Canvas(width, height float64) Rect {
	return CenteredAt(0, 0, width, height)
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) { return r.X + r.W/2, r.Y + r.H/2 }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Intersects reports whether r and o share interior area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// reach returns the largest distance from the origin to any corner of r.
func (r Rect) reach() float64 {
	return max(
		hypot(r.X, r.Y), hypot(r.Right(), r.Y),
		hypot(r.X, r.Bottom()), hypot(r.Right(), r.Bottom()),
	)
}
