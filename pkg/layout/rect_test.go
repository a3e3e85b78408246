package layout

import "testing"

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", Rect{X: 5, Y: 5, W: 10, H: 10}, true},
		{"contained", Rect{X: 2, Y: 2, W: 2, H: 2}, true},
		{"touching edge", Rect{X: 10, Y: 0, W: 5, H: 5}, false},
		{"disjoint", Rect{X: 20, Y: 20, W: 5, H: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("Intersects not symmetric")
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	c := Canvas(100, 50)
	if c.X != -50 || c.Y != -25 {
		t.Fatalf("canvas not centred: %+v", c)
	}
	if !c.ContainsRect(CenteredAt(0, 0, 100, 50)) {
		t.Error("canvas should contain itself")
	}
	if c.ContainsRect(CenteredAt(1, 0, 100, 50)) {
		t.Error("shifted rect should not be contained")
	}
	if got := c.Translate(50, 25); got.X != 0 || got.Y != 0 {
		t.Errorf("Translate = %+v", got)
	}
}

func TestSolutionJSON(t *testing.T) {
	s := Solution{
		"go":    {X: 1, Y: 2, W: 3, H: 4},
		"empty": {},
	}
	data, err := MarshalSolution(s)
	if err != nil {
		t.Fatalf("MarshalSolution: %v", err)
	}
	got, err := UnmarshalSolution(data)
	if err != nil {
		t.Fatalf("UnmarshalSolution: %v", err)
	}
	if len(got) != 1 || got["go"] != s["go"] {
		t.Errorf("round trip = %v", got)
	}
	if _, err := UnmarshalSolution([]byte("{")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
