package config

import (
	"testing"
	"time"
)

func TestBlobAccessors(t *testing.T) {
	b := Blob{
		"name":    "wall",
		"size":    int64(50),
		"ratio":   0.5,
		"yint":    12,
		"enabled": true,
		"dwell":   "8s",
		"secs":    3,
		"words":   []any{"go", "rust"},
		"nested":  map[string]any{"x": 1},
		"bad":     []any{1},
	}

	if s, err := b.String("name", ""); err != nil || s != "wall" {
		t.Errorf("String = %q, %v", s, err)
	}
	if s, _ := b.String("missing", "def"); s != "def" {
		t.Errorf("String default = %q", s)
	}
	if n, err := b.Int("size", 0); err != nil || n != 50 {
		t.Errorf("Int(int64) = %d, %v", n, err)
	}
	if n, err := b.Int("yint", 0); err != nil || n != 12 {
		t.Errorf("Int(int) = %d, %v", n, err)
	}
	if _, err := b.Int("ratio", 0); err == nil {
		t.Error("Int should reject fractional values")
	}
	if f, err := b.Float("ratio", 0); err != nil || f != 0.5 {
		t.Errorf("Float = %v, %v", f, err)
	}
	if v, err := b.Bool("enabled", false); err != nil || !v {
		t.Errorf("Bool = %v, %v", v, err)
	}
	if d, err := b.Duration("dwell", 0); err != nil || d != 8*time.Second {
		t.Errorf("Duration(string) = %v, %v", d, err)
	}
	if d, err := b.Duration("secs", 0); err != nil || d != 3*time.Second {
		t.Errorf("Duration(number) = %v, %v", d, err)
	}
	if _, err := b.Duration("name", 0); err == nil {
		t.Error("Duration should reject non-duration strings")
	}
	if l, err := b.Strings("words"); err != nil || len(l) != 2 {
		t.Errorf("Strings = %v, %v", l, err)
	}
	if _, err := b.Strings("bad"); err == nil {
		t.Error("Strings should reject non-string elements")
	}
	if s, err := b.Section("nested"); err != nil || s["x"] != 1 {
		t.Errorf("Section = %v, %v", s, err)
	}
	if _, err := b.String("size", ""); err == nil {
		t.Error("String should reject numbers")
	}
}
