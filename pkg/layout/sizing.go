package layout

import (
	"math"
	"unicode/utf8"
)

// minWeight is the floor applied to non-positive weights before taking
// logarithms.
const minWeight = 1e-6

// Measurer returns the width and height of text rendered at fontSize.
type Measurer func(text string, fontSize float64) (w, h float64)

// DefaultMeasure approximates a proportional sans-serif font: an average
// glyph is 0.6em wide and a line is 1.2em tall, with a small horizontal
// padding so neighbouring words do not touch.
func DefaultMeasure(text string, fontSize float64) (float64, float64) {
	n := float64(utf8.RuneCountInString(text))
	return fontSize * (0.6*n + 0.4), fontSize * 1.2
}

// FontSize maps weight onto [minFont, maxFont] logarithmically, anchored at
// the smallest and largest weight of the current item set. When all weights
// are equal every item gets maxFont.
func FontSize(weight, minW, maxW, minFont, maxFont float64) float64 {
	minW, maxW = max(minW, minWeight), max(maxW, minWeight)
	if maxW <= minW {
		return maxFont
	}
	w := max(minW, min(max(weight, minWeight), maxW))
	t := (math.Log(w) - math.Log(minW)) / (math.Log(maxW) - math.Log(minW))
	return minFont + t*(maxFont-minFont)
}

// weightRange returns the smallest and largest effective weight in words.
func weightRange(words []Word) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, w := range words {
		v := max(w.Weight, minWeight)
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func hypot(x, y float64) float64 { return math.Hypot(x, y) }
