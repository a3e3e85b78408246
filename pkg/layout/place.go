package layout

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
)

// Word is a weighted text item. Two words are the same item when their
// text is equal.
type Word struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Placement is a word with its computed font size and bounds.
type Placement struct {
	Text     string  `json:"text"`
	Weight   float64 `json:"weight"`
	FontSize float64 `json:"font_size"`
	Bounds   Rect    `json:"bounds"`
	Reused   bool    `json:"reused,omitempty"`
}

// Result is the outcome of one placement run.
type Result struct {
	// Placements are ordered by weight, heaviest first.
	Placements []Placement `json:"placements"`

	// Finishing reports whether the search gave up at least once and
	// switched to accepting candidates without validity checks.
	Finishing bool `json:"finishing,omitempty"`

	// Width and Height echo the canvas the result was computed for.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Solution returns the text→bounds mapping of r, suitable as the previous
// solution of the next run.
func (r Result) Solution() Solution {
	s := make(Solution, len(r.Placements))
	for _, p := range r.Placements {
		s[p.Text] = p.Bounds
	}
	return s
}

// Reused counts placements copied from a previous solution.
func (r Result) Reused() int {
	n := 0
	for _, p := range r.Placements {
		if p.Reused {
			n++
		}
	}
	return n
}

// Options configures a placement run.
type Options struct {
	// Width and Height of the canvas, which is centred on the origin.
	// A zero or negative size disables the containment check.
	Width, Height float64

	// Blocked regions no placement may intersect (e.g. a logo).
	Blocked []Rect

	MinFontSize float64
	MaxFontSize float64

	// RadiusStep is the linear growth of the spiral per ring.
	RadiusStep float64

	// AngleStep is the angular distance between samples, in degrees.
	AngleStep float64

	// Seed for the random angular offset. Zero picks a random seed.
	Seed uint64

	// Measure sizes a word at a font size. Nil uses DefaultMeasure.
	Measure Measurer
}

// DefaultOptions returns options for a canvas of the given size.
func DefaultOptions(width, height float64) Options {
	return Options{Width: width, Height: height}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MinFontSize <= 0 {
		o.MinFontSize = 12
	}
	if o.MaxFontSize <= 0 {
		o.MaxFontSize = 72
	}
	o.MaxFontSize = max(o.MaxFontSize, o.MinFontSize)
	if o.RadiusStep <= 0 {
		o.RadiusStep = 4
	}
	if o.AngleStep <= 0 || o.AngleStep > 360 {
		o.AngleStep = 10
	}
	if o.Measure == nil {
		o.Measure = DefaultMeasure
	}
	return o
}

// hasCanvas reports whether the canvas has a usable positive size.
func (o Options) hasCanvas() bool { return o.Width > 0 && o.Height > 0 }

// Place lays out words without overlap, heaviest first.
//
// Words present in prev keep their previous bounds unchanged, even when
// those bounds overlap or leave the canvas; only empty bounds are searched
// for again. A caller whose canvas or blocked regions changed must not pass
// the old solution. Every other word is placed by an outward spiral search
// starting at the weighted centroid of the words placed so far; the search
// for the first word of an empty canvas starts at the origin, where it
// lands unless a blocked region is in the way.
//
// When a spiral exceeds the search radius without finding free space the run
// enters finishing mode: that word and every following word is placed at its
// search center without validity checks. This bounds the runtime for dense
// inputs at the cost of overlaps.
func Place(words []Word, prev Solution, opts Options) Result {
	opts = opts.withDefaults()
	items := normalize(words)
	res := Result{Width: opts.Width, Height: opts.Height}
	if len(items) == 0 {
		return res
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	p := &placer{
		opts:   opts,
		canvas: Canvas(opts.Width, opts.Height),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for _, b := range opts.Blocked {
		p.blockedReach = max(p.blockedReach, b.reach())
	}

	minW, maxW := weightRange(items)
	out := make([]Placement, len(items))
	var pending []int

	for i, w := range items {
		out[i] = Placement{
			Text:     w.Text,
			Weight:   w.Weight,
			FontSize: FontSize(w.Weight, minW, maxW, opts.MinFontSize, opts.MaxFontSize),
		}
		if b, ok := prev[w.Text]; ok && !b.Empty() {
			out[i].Bounds = b
			out[i].Reused = true
			p.add(out[i])
			continue
		}
		pending = append(pending, i)
	}

	for _, i := range pending {
		w, h := opts.Measure(out[i].Text, out[i].FontSize)
		var cx, cy float64
		if len(p.placed) > 0 {
			cx, cy = p.centroid()
		}
		out[i].Bounds = p.search(cx, cy, w, h)
		p.add(out[i])
	}

	res.Placements = out
	res.Finishing = p.finishing
	return res
}

// normalize drops empty and non-finite words, removes duplicate texts
// (keeping the heaviest) and sorts by weight descending, ties by text.
func normalize(words []Word) []Word {
	best := make(map[string]Word, len(words))
	for _, w := range words {
		if w.Text == "" || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			continue
		}
		if cur, ok := best[w.Text]; !ok || w.Weight > cur.Weight {
			best[w.Text] = w
		}
	}
	out := make([]Word, 0, len(best))
	for _, w := range best {
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b Word) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	return out
}

type placer struct {
	opts         Options
	canvas       Rect
	rng          *rand.Rand
	placed       []Placement
	reach        float64
	blockedReach float64
	finishing    bool
}

func (p *placer) add(pl Placement) {
	p.placed = append(p.placed, pl)
	p.reach = max(p.reach, pl.Bounds.reach())
}

// centroid returns the weighted mean of the placed items' centers pushed
// out by their half extents. The push alternates sign with the placement
// index, which biases consecutive words to opposite sides.
func (p *placer) centroid() (float64, float64) {
	var sx, sy, sw float64
	for i, pl := range p.placed {
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		w := max(pl.Weight, minWeight)
		cx, cy := pl.Bounds.Center()
		sx += (cx + sign*pl.Bounds.W/2) * w
		sy += (cy + sign*pl.Bounds.H/2) * w
		sw += w
	}
	if sw == 0 {
		return 0, 0
	}
	return sx / sw, sy / sw
}

// maxRadius bounds the spiral. With a canvas it is the larger canvas side.
// Without one it is large enough that a ring lies entirely outside every
// placed item and blocked region, so a free candidate always exists.
func (p *placer) maxRadius(cx, cy, w, h float64) float64 {
	if p.opts.hasCanvas() {
		return max(p.opts.Width, p.opts.Height)
	}
	return hypot(cx, cy) + max(p.reach, p.blockedReach) + w + h + p.opts.RadiusStep
}

func (p *placer) search(cx, cy, w, h float64) Rect {
	first := CenteredAt(cx, cy, w, h)
	if p.finishing || p.fits(first) {
		return first
	}

	step := p.opts.AngleStep * math.Pi / 180
	samples := max(1, int(math.Ceil(2*math.Pi/step)))
	offset := p.rng.Float64() * 2 * math.Pi
	limit := p.maxRadius(cx, cy, w, h)

	for r := p.opts.RadiusStep; r <= limit; r += p.opts.RadiusStep {
		for k := range samples {
			theta := offset + float64(k)*step
			cand := CenteredAt(cx+r*math.Cos(theta), cy+r*math.Sin(theta), w, h)
			if p.fits(cand) {
				return cand
			}
		}
	}

	p.finishing = true
	return first
}

func (p *placer) fits(r Rect) bool {
	if p.opts.hasCanvas() && !p.canvas.ContainsRect(r) {
		return false
	}
	for _, b := range p.opts.Blocked {
		if r.Intersects(b) {
			return false
		}
	}
	for _, pl := range p.placed {
		if r.Intersects(pl.Bounds) {
			return false
		}
	}
	return true
}

// Overlap names two items whose bounds intersect. An item intersecting a
// blocked region is reported with Other set to "#blocked".
type Overlap struct {
	Item, Other string
}

// Overlaps lists every intersecting pair of placements and every placement
// intersecting one of the blocked regions.
func Overlaps(r Result, blocked []Rect) []Overlap {
	var out []Overlap
	for i, a := range r.Placements {
		for _, b := range r.Placements[i+1:] {
			if a.Bounds.Intersects(b.Bounds) {
				out = append(out, Overlap{Item: a.Text, Other: b.Text})
			}
		}
		for _, blk := range blocked {
			if a.Bounds.Intersects(blk) {
				out = append(out, Overlap{Item: a.Text, Other: "#blocked"})
			}
		}
	}
	return out
}
