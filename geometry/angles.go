package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// headingEpsilon keeps atan2 defined for vectors pointing straight up or down.
const headingEpsilon = 1e-6

// Rotate rotates v anticlockwise by theta radians about the origin.
func Rotate(v r2.Vec, theta float64) r2.Vec {
	return r2.Rotate(v, theta, r2.Vec{})
}

// Angle returns the heading of v in [0, 2*Pi).
func Angle(v r2.Vec) float64 {
	a := math.Atan2(v.Y, v.X+headingEpsilon)
	return math.Mod(a+2*math.Pi, 2*math.Pi)
}

// PiDomain wraps an angle into (-Pi, Pi].
func PiDomain(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Reflect bounces v off wall. The velocity is split into components along the
// wall and along its normal, each oriented to have a non-negative dot product
// with v, and recombined with the normal component negated. The magnitude of v
// is preserved. A degenerate wall returns v unchanged.
func Reflect(v r2.Vec, wall Segment) r2.Vec {
	par := wall.Direction()
	if r2.Norm(par) == 0 {
		return v
	}
	perp := Perpendicular(par)
	if r2.Dot(perp, v) <= 0 {
		perp = r2.Scale(-1, perp)
	}
	if r2.Dot(par, v) <= 0 {
		par = r2.Scale(-1, par)
	}
	par, perp = r2.Unit(par), r2.Unit(perp)

	return r2.Sub(
		r2.Scale(r2.Dot(v, par), par),
		r2.Scale(r2.Dot(v, perp), perp),
	)
}
