// Package geometry provides stateless batch operations on points and line segments.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// parallelTolerance is the relative size of |sa x sb| below which two
// segments are treated as parallel.
const parallelTolerance = 1e-12

// Segment is a line segment between two points.
type Segment [2]r2.Vec

// Seg builds a segment from raw coordinates.
func Seg(x0, y0, x1, y1 float64) Segment {
	return Segment{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

// Direction returns the vector from the first endpoint to the second.
func (s Segment) Direction() r2.Vec {
	return r2.Sub(s[1], s[0])
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return r2.Norm(s.Direction())
}

// Intercept holds the path parameters of the crossing point of two segments'
// infinite lines. A is measured along the first segment and B along the second.
// Parallel pairs have NaN parameters.
type Intercept struct {
	A, B     float64
	Parallel bool
}

// Crosses reports whether both parameters lie strictly inside (0, 1).
func (i Intercept) Crosses() bool {
	return !i.Parallel && i.A > 0 && i.A < 1 && i.B > 0 && i.B < 1
}

// Perpendicular rotates v by 90 degrees anticlockwise.
func Perpendicular(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// Intersect solves the line equations of a and b.
//
//	la = (d0 . sb_perp) / (sa . sb_perp)
//	lb = (-d0 . sa_perp) / (sb . sa_perp)
//
// with d0 = b0 - a0, sa = a1 - a0 and sb = b1 - b0.
func Intersect(a, b Segment) Intercept {
	sa := a.Direction()
	sb := b.Direction()
	d0 := r2.Sub(b[0], a[0])
	saP := Perpendicular(sa)
	sbP := Perpendicular(sb)

	denA := r2.Dot(sa, sbP)
	denB := r2.Dot(sb, saP)
	scale := r2.Norm(sa) * r2.Norm(sb)
	if scale == 0 || math.Abs(denA) <= parallelTolerance*scale {
		return Intercept{A: math.NaN(), B: math.NaN(), Parallel: true}
	}

	return Intercept{
		A: r2.Dot(d0, sbP) / denA,
		B: -r2.Dot(d0, saP) / denB,
	}
}

// Intercepts returns the pairwise intercepts of every segment in a with every
// segment in b, indexed [i][j].
func Intercepts(a, b []Segment) [][]Intercept {
	out := make([][]Intercept, len(a))
	for i := range a {
		row := make([]Intercept, len(b))
		for j := range b {
			row[j] = Intersect(a[i], b[j])
		}
		out[i] = row
	}
	return out
}

// Collides reports whether segments a and b cross.
func Collides(a, b Segment) bool {
	return Intersect(a, b).Crosses()
}

// Collisions returns the pairwise crossing test of a against b, indexed [i][j].
func Collisions(a, b []Segment) [][]bool {
	out := make([][]bool, len(a))
	for i := range a {
		row := make([]bool, len(b))
		for j := range b {
			row[j] = Collides(a[i], b[j])
		}
		out[i] = row
	}
	return out
}

// NearestPoint returns the point of s closest to p. The projection parameter
// is clamped to [0, 1] so the result never leaves the segment.
func NearestPoint(p r2.Vec, s Segment) r2.Vec {
	dir := s.Direction()
	ss := r2.Dot(dir, dir)
	if ss == 0 {
		return s[0]
	}
	l := r2.Dot(r2.Sub(p, s[0]), dir) / ss
	l = math.Max(0, math.Min(1, l))
	return r2.Add(s[0], r2.Scale(l, dir))
}

// NearestVectors returns the shortest vector from each segment to each point,
// indexed [point][segment].
func NearestVectors(points []r2.Vec, segs []Segment) [][]r2.Vec {
	out := make([][]r2.Vec, len(points))
	for i, p := range points {
		row := make([]r2.Vec, len(segs))
		for j, s := range segs {
			row[j] = r2.Sub(p, NearestPoint(p, s))
		}
		out[i] = row
	}
	return out
}

// PairwiseVectors returns a[i] - b[j] for every pair, indexed [i][j].
func PairwiseVectors(a, b []r2.Vec) [][]r2.Vec {
	out := make([][]r2.Vec, len(a))
	for i := range a {
		row := make([]r2.Vec, len(b))
		for j := range b {
			row[j] = r2.Sub(a[i], b[j])
		}
		out[i] = row
	}
	return out
}

// Norms returns the Euclidean norm of every vector in a pairwise grid.
// An empty grid yields an empty matrix.
func Norms(vecs [][]r2.Vec) *mat.Dense {
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return &mat.Dense{}
	}
	rows, cols := len(vecs), len(vecs[0])
	out := mat.NewDense(rows, cols, nil)
	for i, row := range vecs {
		for j, v := range row {
			out.Set(i, j, r2.Norm(v))
		}
	}
	return out
}

// PairwiseDistances returns |a[i] - b[j]| for every pair.
func PairwiseDistances(a, b []r2.Vec) *mat.Dense {
	return Norms(PairwiseVectors(a, b))
}

// SegmentsBetween returns the segment from every a[i] to every b[j], flattened
// row-major (index i*len(b)+j).
func SegmentsBetween(a, b []r2.Vec) []Segment {
	out := make([]Segment, 0, len(a)*len(b))
	for i := range a {
		for j := range b {
			out = append(out, Segment{a[i], b[j]})
		}
	}
	return out
}
