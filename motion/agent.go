package motion

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/trajectory"
)

// speedTimeConstant is the time constant, in seconds, of the measured speed average.
const speedTimeConstant = 10.0

// Record is one history entry, written once per Update.
//
// Vel is the measured velocity: the boundary-aware displacement since the
// previous record divided by dt, in 2D, 1D and playback alike. It is not the
// internal policy velocity that State().Vel reports, which in 1D already
// includes the speed update for the next step.
type Record struct {
	T      float64
	Pos    r2.Vec
	Vel    r2.Vec
	RotVel float64
}

// State is a snapshot of the agent's internal state.
type State struct {
	T                    float64
	Pos                  r2.Vec
	Vel                  r2.Vec // internal policy velocity, not the recorded one
	RotVel               float64
	DistanceTravelled    float64
	AverageMeasuredSpeed float64
	Playback             bool
}

// StepInfo describes what happened during the most recent Update.
type StepInfo struct {
	Collided  bool
	Wall      int // index of the wall bounced off, -1 if none
	Recovered bool // position was clamped or wrapped back inside
}

// Drift asks the policy to steer velocity towards Velocity. StrengthRatio
// divides the speed coherence time, so larger values steer harder.
type Drift struct {
	Velocity      r2.Vec
	StrengthRatio float64
}

// Agent moves through an environment. It is not safe for concurrent use.
type Agent struct {
	env    *environment.Environment
	params Params
	noise  Noise

	pos      r2.Vec
	vel      r2.Vec
	rotVel   float64
	t        float64
	distance float64
	avgSpeed float64

	playback trajectory.Sampler
	history  []Record
	last     StepInfo
}

// New creates an agent at a random position with a random heading. rng
// drives both the initial placement and the policy noise.
func New(env *environment.Environment, params Params, rng *rand.Rand) (*Agent, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	start, err := env.SamplePositions(1, environment.Random, rng)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		env:      env,
		params:   params,
		noise:    rng,
		pos:      start[0],
		avgSpeed: math.Max(params.SpeedMean, params.SpeedStd),
		last:     StepInfo{Wall: -1},
	}
	if env.Dimensionality() == environment.Dim2D {
		heading := rng.Float64() * 2 * math.Pi
		a.vel = r2.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
		a.vel = r2.Scale(params.SpeedStd, a.vel)
	} else {
		a.vel = r2.Vec{X: params.SpeedMean}
	}
	return a, nil
}

// SetNoise replaces the source of policy noise.
func (a *Agent) SetNoise(n Noise) { a.noise = n }

// Place moves the agent to pos with velocity vel. pos must be inside the arena.
func (a *Agent) Place(pos, vel r2.Vec) error {
	if !a.env.Inside(pos) {
		return fmt.Errorf("%w: start position %v is outside the environment", environment.ErrConfiguration, pos)
	}
	if a.env.Dimensionality() == environment.Dim1D {
		pos.Y, vel.Y = 0, 0
	}
	a.pos, a.vel = pos, vel
	return nil
}

// ImportTrajectory switches the agent to playback of s. Only solid
// boundaries are supported.
func (a *Agent) ImportTrajectory(s trajectory.Sampler) error {
	if a.env.Boundary() != environment.Solid {
		return fmt.Errorf("%w: trajectory playback requires solid boundaries", environment.ErrConfiguration)
	}
	if !(s.Duration() > 0) {
		return fmt.Errorf("%w: trajectory has zero duration", trajectory.ErrImportData)
	}
	a.playback = s
	return nil
}

// ImportTrajectoryFile loads a trajectory CSV and switches to playback. On
// failure the error is returned and the agent keeps its random policy.
func (a *Agent) ImportTrajectoryFile(path string) error {
	s, err := trajectory.LoadCSV(path)
	if err == nil {
		err = a.ImportTrajectory(s)
	}
	if err != nil {
		slog.Warn("trajectory import failed, keeping random motion policy", "path", path, "error", err)
		return err
	}

	ex, b := a.env.Extent(), s.Bounds()
	outside := b.Min.X < ex.Min.X || b.Max.X > ex.Max.X
	if a.env.Dimensionality() == environment.Dim2D {
		outside = outside || b.Min.Y < ex.Min.Y || b.Max.Y > ex.Max.Y
	}
	if outside {
		slog.Warn("trajectory extends beyond the environment",
			"path", path,
			"trajectory_min", b.Min,
			"trajectory_max", b.Max,
			"extent_max", ex.Max,
		)
	}
	slog.Info("trajectory imported", "path", path, "samples", s.Len(), "duration", s.Duration())
	return nil
}

// Update advances the agent by dt. A nil drift disables drift steering.
// Preconditions are checked before any state changes; on success
// exactly one history record is appended.
func (a *Agent) Update(dt float64, drift *Drift) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %v", ErrInvalidStep, dt)
	}
	if drift != nil && (!(drift.StrengthRatio > 0) || math.IsInf(drift.StrengthRatio, 0)) {
		return fmt.Errorf("%w: drift strength ratio must be positive, got %v", ErrInvalidStep, drift.StrengthRatio)
	}

	a.params.DT = dt
	a.t += dt
	a.last = StepInfo{Wall: -1}

	var recorded r2.Vec
	switch {
	case a.playback != nil:
		recorded = a.stepPlayback(dt)
	case a.env.Dimensionality() == environment.Dim2D:
		recorded = a.step2D(dt, drift)
	default:
		recorded = a.step1D(dt)
	}
	a.record(dt, recorded)
	return nil
}

// Step advances the agent by the configured dt with no drift.
func (a *Agent) Step() error {
	return a.Update(a.params.DT, nil)
}

func (a *Agent) record(dt float64, vel r2.Vec) {
	if n := len(a.history); n > 0 {
		prev := a.history[n-1]
		a.distance += r2.Norm(r2.Sub(a.pos, prev.Pos))
		k := dt / speedTimeConstant
		a.avgSpeed = (1-k)*a.avgSpeed + k*r2.Norm(vel)
	}
	a.history = append(a.history, Record{T: a.t, Pos: a.pos, Vel: vel, RotVel: a.rotVel})
}

// Position returns the most recently recorded position, or the start
// position before the first update.
func (a *Agent) Position() r2.Vec {
	if n := len(a.history); n > 0 {
		return a.history[n-1].Pos
	}
	return a.pos
}

// Velocity returns the most recently recorded velocity, or the initial
// velocity before the first update.
func (a *Agent) Velocity() r2.Vec {
	if n := len(a.history); n > 0 {
		return a.history[n-1].Vel
	}
	return a.vel
}

// State returns a snapshot of the internal state.
func (a *Agent) State() State {
	return State{
		T:                    a.t,
		Pos:                  a.pos,
		Vel:                  a.vel,
		RotVel:               a.rotVel,
		DistanceTravelled:    a.distance,
		AverageMeasuredSpeed: a.avgSpeed,
		Playback:             a.playback != nil,
	}
}

// LastStep reports collisions and boundary recoveries of the latest Update.
func (a *Agent) LastStep() StepInfo { return a.last }

// History returns a copy of every record so far.
func (a *Agent) History() []Record {
	return append([]Record(nil), a.history...)
}

// LastRecord returns the latest record and false if there is none.
func (a *Agent) LastRecord() (Record, bool) {
	if n := len(a.history); n > 0 {
		return a.history[n-1], true
	}
	return Record{}, false
}

// Params returns the agent's motion parameters.
func (a *Agent) Params() Params { return a.params }

// Environment returns the environment the agent moves in.
func (a *Agent) Environment() *environment.Environment { return a.env }
