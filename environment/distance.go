package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/geometry"
)

// Unreachable is the distance assigned to pairs with no permitted route.
const Unreachable = 1000.0

// WallGeometry selects how distance queries treat walls.
type WallGeometry string

const (
	// Euclidean ignores walls.
	Euclidean WallGeometry = "euclidean"
	// LineOfSight is Euclidean unless an interior wall blocks the direct segment.
	LineOfSight WallGeometry = "line_of_sight"
	// Geodesic routes around at most one interior wall.
	Geodesic WallGeometry = "geodesic"
)

// ParseWallGeometry validates a wall geometry name.
func ParseWallGeometry(s string) (WallGeometry, error) {
	switch g := WallGeometry(s); g {
	case Euclidean, LineOfSight, Geodesic:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown wall geometry %q", ErrConfiguration, s)
}

// VectorsBetween returns a[i] - b[j] for every pair. Under periodic
// boundaries each component longer than scale/2 is replaced by the shorter
// wrap-around equivalent.
func (e *Environment) VectorsBetween(a, b []r2.Vec) [][]r2.Vec {
	vecs := geometry.PairwiseVectors(e.project(a), e.project(b))
	if e.cfg.BoundaryConditions != Periodic {
		return vecs
	}
	s := e.cfg.Scale
	for i := range vecs {
		for j := range vecs[i] {
			vecs[i][j].X = fold(vecs[i][j].X, s)
			vecs[i][j].Y = fold(vecs[i][j].Y, s)
		}
	}
	return vecs
}

// VectorBetween is VectorsBetween for a single pair.
func (e *Environment) VectorBetween(a, b r2.Vec) r2.Vec {
	return e.VectorsBetween([]r2.Vec{a}, []r2.Vec{b})[0][0]
}

// DistancesBetween returns pairwise distances from a (rows) to b (columns)
// under the given wall geometry.
//
// LineOfSight and Geodesic need solid boundaries, and Geodesic supports at
// most one interior wall. Pairs whose direct segment crosses that wall are
// routed via whichever of its endpoints lies strictly inside the arena; if
// neither does they are Unreachable. 1D arenas always use Euclidean distance.
func (e *Environment) DistancesBetween(a, b []r2.Vec, g WallGeometry) (*mat.Dense, error) {
	if _, err := ParseWallGeometry(string(g)); err != nil {
		return nil, err
	}
	if g != Euclidean && e.cfg.BoundaryConditions != Solid {
		return nil, fmt.Errorf("%w: %s distance requires solid boundaries", ErrConfiguration, g)
	}
	interior := e.InteriorWalls()
	if g == Geodesic && len(interior) > 1 {
		return nil, fmt.Errorf("%w: geodesic distance supports at most one interior wall, have %d",
			ErrConfiguration, len(interior))
	}

	dist := geometry.Norms(e.VectorsBetween(a, b))
	if g == Euclidean || e.cfg.Dimensionality == Dim1D || len(interior) == 0 || dist.IsEmpty() {
		return dist, nil
	}

	switch g {
	case LineOfSight:
		for i := range a {
			for j := range b {
				step := geometry.Segment{a[i], b[j]}
				for _, w := range interior {
					if geometry.Collides(step, w) {
						dist.Set(i, j, Unreachable)
						break
					}
				}
			}
		}
	case Geodesic:
		wall := interior[0]
		var corners []r2.Vec
		for _, end := range wall {
			if e.Inside(end) {
				corners = append(corners, end)
			}
		}
		for i := range a {
			for j := range b {
				if !geometry.Collides(geometry.Segment{a[i], b[j]}, wall) {
					continue
				}
				best := Unreachable
				for _, c := range corners {
					via := r2.Norm(r2.Sub(a[i], c)) + r2.Norm(r2.Sub(c, b[j]))
					best = math.Min(best, via)
				}
				dist.Set(i, j, best)
			}
		}
	}
	return dist, nil
}

// project drops the Y coordinate in 1D arenas.
func (e *Environment) project(ps []r2.Vec) []r2.Vec {
	if e.cfg.Dimensionality != Dim1D {
		return ps
	}
	out := make([]r2.Vec, len(ps))
	for i, p := range ps {
		out[i] = r2.Vec{X: p.X}
	}
	return out
}

// fold maps a periodic displacement component onto [-scale/2, scale/2].
func fold(v, scale float64) float64 {
	if math.Abs(v) > scale/2 {
		return -math.Copysign(scale-math.Abs(v), v)
	}
	return v
}
