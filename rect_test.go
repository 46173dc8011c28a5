package pentimento

import "testing"

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"zero value", Rect{}, true},
		{"negative width", Rect{X: 0, Y: 0, W: -5, H: 10}, true},
		{"zero height", Rect{X: 3, Y: 3, W: 10, H: 0}, true},
		{"normal", Rect{X: 1, Y: 2, W: 3, H: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 100}
	b := Rect{X: 50, Y: 50, W: 100, H: 100}

	got := a.Intersect(b)
	want := Rect{X: 50, Y: 50, W: 50, H: 50}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	// Disjoint rectangles intersect to empty.
	c := Rect{X: 200, Y: 200, W: 10, H: 10}
	if got := a.Intersect(c); !got.Empty() {
		t.Errorf("disjoint Intersect = %+v, want empty", got)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 10, Y: 10, W: 20, H: 20}
	b := Rect{X: 40, Y: 5, W: 10, H: 10}

	got := a.Union(b)
	want := Rect{X: 10, Y: 5, W: 40, H: 25}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}

	// Empty rectangles contribute nothing.
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %+v, want %+v", got, a)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union = %+v, want %+v", got, b)
	}
}

func TestRectArea(t *testing.T) {
	if got := (Rect{W: 10, H: 10}).Area(); got != 100 {
		t.Errorf("Area = %d, want 100", got)
	}
	if got := (Rect{W: -1, H: 10}).Area(); got != 0 {
		t.Errorf("empty Area = %d, want 0", got)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	if !r.Contains(10, 10) {
		t.Error("expected top-left corner to be contained")
	}
	if r.Contains(15, 15) {
		t.Error("expected exclusive max edge")
	}
	if r.Contains(9, 12) {
		t.Error("expected point left of rect to be outside")
	}
}

func TestRectImageRoundTrip(t *testing.T) {
	r := Rect{X: 3, Y: 7, W: 20, H: 11}
	if got := FromImageRect(r.ToImageRect()); got != r {
		t.Errorf("round trip = %+v, want %+v", got, r)
	}
}
