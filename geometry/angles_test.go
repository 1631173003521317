package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestRotate(t *testing.T) {
	got := Rotate(r2.Vec{X: 1, Y: 0}, math.Pi/2)
	if r2.Norm(r2.Sub(got, r2.Vec{X: 0, Y: 1})) > eps {
		t.Errorf("Rotate = %v, want (0, 1)", got)
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		v    r2.Vec
		want float64
	}{
		{r2.Vec{X: 1, Y: 0}, 0},
		{r2.Vec{X: 0, Y: 1}, math.Pi / 2},
		{r2.Vec{X: -1, Y: 0}, math.Pi},
		{r2.Vec{X: 0, Y: -1}, 3 * math.Pi / 2},
	}
	for _, tc := range tests {
		if got := Angle(tc.v); math.Abs(got-tc.want) > 1e-5 {
			t.Errorf("Angle(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestPiDomain(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tc := range tests {
		if got := PiDomain(tc.in); math.Abs(got-tc.want) > eps {
			t.Errorf("PiDomain(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		name string
		v    r2.Vec
		wall Segment
		want r2.Vec
	}{
		{"head on vertical wall", r2.Vec{X: 1, Y: 0}, Seg(1, 0, 1, 1), r2.Vec{X: -1, Y: 0}},
		{"oblique on vertical wall", r2.Vec{X: 1, Y: 2}, Seg(1, 0, 1, 1), r2.Vec{X: -1, Y: 2}},
		{"wall orientation does not matter", r2.Vec{X: 1, Y: 2}, Seg(1, 1, 1, 0), r2.Vec{X: -1, Y: 2}},
		{"floor", r2.Vec{X: 0.3, Y: -0.4}, Seg(0, 0, 1, 0), r2.Vec{X: 0.3, Y: 0.4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Reflect(tc.v, tc.wall)
			if r2.Norm(r2.Sub(got, tc.want)) > eps {
				t.Errorf("Reflect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReflectPreservesDecomposition(t *testing.T) {
	v := r2.Vec{X: 0.7, Y: -0.2}
	wall := Seg(0, 0, 1, 1)
	got := Reflect(v, wall)

	par := r2.Unit(wall.Direction())
	perp := Perpendicular(par)
	if math.Abs(math.Abs(r2.Dot(got, par))-math.Abs(r2.Dot(v, par))) > eps {
		t.Error("parallel component magnitude changed")
	}
	if math.Abs(math.Abs(r2.Dot(got, perp))-math.Abs(r2.Dot(v, perp))) > eps {
		t.Error("perpendicular component magnitude changed")
	}
	if math.Abs(r2.Norm(got)-r2.Norm(v)) > eps {
		t.Errorf("speed changed: %v -> %v", r2.Norm(v), r2.Norm(got))
	}
	if r2.Dot(got, perp)*r2.Dot(v, perp) > 0 {
		t.Error("perpendicular component was not flipped")
	}
}
