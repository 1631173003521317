// Package environment defines the bounded 1D or 2D arena an agent moves in,
// its boundary conditions and walls, and the wall-aware spatial queries built
// on the geometry kernel.
package environment

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/geometry"
)

// ErrConfiguration is returned for invalid dimensionality, boundary or wall
// combinations. It is never retried and nothing is mutated when it is returned.
var ErrConfiguration = errors.New("invalid environment configuration")

// Dimensionality of the arena.
type Dimensionality string

const (
	Dim1D Dimensionality = "1D"
	Dim2D Dimensionality = "2D"
)

// Boundary is the arena topology.
type Boundary string

const (
	Solid    Boundary = "solid"
	Periodic Boundary = "periodic"
)

// boundaryMargin is how far inside the extent a solid clamp places a position.
const boundaryMargin = 0.01

// Config holds the arena parameters. Zero Scale, Aspect and DX are replaced
// by their defaults in New.
type Config struct {
	Dimensionality     Dimensionality
	BoundaryConditions Boundary
	Scale              float64 // metres
	Aspect             float64 // x/y ratio, 2D only
	DX                 float64 // discretisation step for whole-arena queries
}

// DefaultConfig returns a 1m x 1m solid 2D arena.
func DefaultConfig() Config {
	return Config{
		Dimensionality:     Dim2D,
		BoundaryConditions: Solid,
		Scale:              1,
		Aspect:             1,
		DX:                 0.01,
	}
}

// Environment is the arena. Walls are append-only: in solid 2D mode the first
// four are the bounding rectangle (left, top, right, bottom) and anything
// added later is an interior wall.
type Environment struct {
	cfg      Config
	extent   r2.Box
	centre   r2.Vec
	walls    []geometry.Segment
	discrete []r2.Vec
}

// New validates cfg and builds the arena.
func New(cfg Config) (*Environment, error) {
	def := DefaultConfig()
	if cfg.Dimensionality == "" {
		cfg.Dimensionality = def.Dimensionality
	}
	if cfg.BoundaryConditions == "" {
		cfg.BoundaryConditions = def.BoundaryConditions
	}
	if cfg.Scale == 0 {
		cfg.Scale = def.Scale
	}
	if cfg.Aspect == 0 {
		cfg.Aspect = def.Aspect
	}
	if cfg.DX == 0 {
		cfg.DX = def.DX
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Environment{cfg: cfg}
	s := cfg.Scale
	switch cfg.Dimensionality {
	case Dim1D:
		e.extent = r2.Box{Min: r2.Vec{}, Max: r2.Vec{X: s}}
		e.centre = r2.Vec{X: s / 2}
	case Dim2D:
		w := cfg.Aspect * s
		e.extent = r2.Box{Min: r2.Vec{}, Max: r2.Vec{X: w, Y: s}}
		e.centre = r2.Vec{X: w / 2, Y: s / 2}
		if cfg.BoundaryConditions == Solid {
			e.walls = []geometry.Segment{
				geometry.Seg(0, 0, 0, s),
				geometry.Seg(0, s, w, s),
				geometry.Seg(w, s, w, 0),
				geometry.Seg(w, 0, 0, 0),
			}
		}
	}
	e.discrete = e.discretise(cfg.DX)
	return e, nil
}

func (c Config) validate() error {
	switch c.Dimensionality {
	case Dim1D, Dim2D:
	default:
		return fmt.Errorf("%w: dimensionality %q", ErrConfiguration, c.Dimensionality)
	}
	switch c.BoundaryConditions {
	case Solid, Periodic:
	default:
		return fmt.Errorf("%w: boundary conditions %q", ErrConfiguration, c.BoundaryConditions)
	}
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrConfiguration, c.Scale)
	}
	if !(c.Aspect > 0) || math.IsInf(c.Aspect, 0) {
		return fmt.Errorf("%w: aspect must be positive, got %v", ErrConfiguration, c.Aspect)
	}
	if !(c.DX > 0) {
		return fmt.Errorf("%w: dx must be positive, got %v", ErrConfiguration, c.DX)
	}
	return nil
}

// Config returns the effective configuration.
func (e *Environment) Config() Config { return e.cfg }

// Dimensionality returns the arena dimensionality.
func (e *Environment) Dimensionality() Dimensionality { return e.cfg.Dimensionality }

// Boundary returns the boundary conditions.
func (e *Environment) Boundary() Boundary { return e.cfg.BoundaryConditions }

// Scale returns the arena scale in metres.
func (e *Environment) Scale() float64 { return e.cfg.Scale }

// Extent returns the bounding box. In 1D only the X range is meaningful.
func (e *Environment) Extent() r2.Box { return e.extent }

// Centre returns the arena centre.
func (e *Environment) Centre() r2.Vec { return e.centre }

// AddWall appends a wall. Walls only exist in 2D arenas.
func (e *Environment) AddWall(w geometry.Segment) error {
	if e.cfg.Dimensionality != Dim2D {
		return fmt.Errorf("%w: walls can only be added to a 2D environment", ErrConfiguration)
	}
	e.walls = append(e.walls, w)
	return nil
}

// Walls returns a copy of all walls in storage order.
func (e *Environment) Walls() []geometry.Segment {
	out := make([]geometry.Segment, len(e.walls))
	copy(out, e.walls)
	return out
}

// Wall returns the i-th wall in storage order.
func (e *Environment) Wall(i int) geometry.Segment { return e.walls[i] }

// NumWalls returns the number of walls, bounding walls included.
func (e *Environment) NumWalls() int { return len(e.walls) }

// InteriorWalls returns the walls that are not part of the bounding rectangle.
func (e *Environment) InteriorWalls() []geometry.Segment {
	walls := e.walls
	if e.cfg.Dimensionality == Dim2D && e.cfg.BoundaryConditions == Solid {
		walls = walls[4:]
	}
	return append([]geometry.Segment(nil), walls...)
}

// Inside reports whether p lies strictly inside the extent. Points exactly on
// an edge are outside.
func (e *Environment) Inside(p r2.Vec) bool {
	ex := e.extent
	if p.X <= ex.Min.X || p.X >= ex.Max.X {
		return false
	}
	if e.cfg.Dimensionality == Dim1D {
		return true
	}
	return p.Y > ex.Min.Y && p.Y < ex.Max.Y
}

// ClampOrWrap returns p unchanged when inside. Otherwise periodic arenas wrap
// each coordinate modulo the extent span and solid arenas clamp it to 1cm
// inside the extent.
func (e *Environment) ClampOrWrap(p r2.Vec) r2.Vec {
	if e.Inside(p) {
		return p
	}
	ex := e.extent
	out := r2.Vec{}
	switch e.cfg.BoundaryConditions {
	case Periodic:
		out.X = wrap(p.X, ex.Max.X)
		if e.cfg.Dimensionality == Dim2D {
			out.Y = wrap(p.Y, ex.Max.Y)
		}
	case Solid:
		out.X = clamp(p.X, ex.Min.X+boundaryMargin, ex.Max.X-boundaryMargin)
		if e.cfg.Dimensionality == Dim2D {
			out.Y = clamp(p.Y, ex.Min.Y+boundaryMargin, ex.Max.Y-boundaryMargin)
		}
	}
	return out
}

// StepCollisions reports, for every wall in storage order, whether the step
// from -> to crosses it. It returns nil in 1D or when there are no walls.
func (e *Environment) StepCollisions(from, to r2.Vec) []bool {
	if e.cfg.Dimensionality == Dim1D || len(e.walls) == 0 {
		return nil
	}
	step := geometry.Segment{from, to}
	out := make([]bool, len(e.walls))
	for i, w := range e.walls {
		out[i] = geometry.Collides(w, step)
	}
	return out
}

// VectorsFromWalls returns the shortest vector from every wall to p.
func (e *Environment) VectorsFromWalls(p r2.Vec) []r2.Vec {
	if len(e.walls) == 0 {
		return nil
	}
	return geometry.NearestVectors([]r2.Vec{p}, e.walls)[0]
}

// wrap returns x modulo span in the open interval (0, span). A remainder that
// rounds onto an edge moves to the nearest float above 0 so Inside holds.
func wrap(x, span float64) float64 {
	m := math.Mod(x, span)
	if m < 0 {
		m += span
	}
	if m >= span || m <= 0 {
		m = math.Nextafter(0, span)
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
