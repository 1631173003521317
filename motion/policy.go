package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/geometry"
)

// Blend weights for the spring and conveyor wall repulsion terms.
const (
	springWeight   = 3.0
	conveyorWeight = 6.0

	// bounceSpeedFactor scales the mean speed after a wall bounce.
	bounceSpeedFactor = 0.5
)

func (a *Agent) step2D(dt float64, drift *Drift) r2.Vec {
	p := a.params
	prev := a.pos

	// Heading.
	a.rotVel += OrnsteinUhlenbeck(dt, a.rotVel, 0, p.RotationalVelocityStd, p.RotationalVelocityCoherenceTime, a.noise.NormFloat64())
	a.vel = geometry.Rotate(a.vel, a.rotVel*dt)

	// Speed, in normal space so the marginal stays Rayleigh.
	n := a.noise.NormFloat64()
	if speed := r2.Norm(a.vel); speed > 0 {
		z := RayleighToNormal(speed, p.SpeedMean)
		z += OrnsteinUhlenbeck(dt, z, 0, 1, p.SpeedCoherenceTime, n)
		a.vel = r2.Scale(NormalToRayleigh(z, p.SpeedMean)/speed, a.vel)
	}

	if drift != nil {
		tau := p.SpeedCoherenceTime / drift.StrengthRatio
		a.vel.X += OrnsteinUhlenbeck(dt, a.vel.X, drift.Velocity.X, 0, tau, 0)
		a.vel.Y += OrnsteinUhlenbeck(dt, a.vel.Y, drift.Velocity.Y, 0, tau, 0)
	}

	if p.WallsRepel && a.env.NumWalls() > 0 {
		a.repel(dt)
	}

	next := r2.Add(a.pos, r2.Scale(dt, a.vel))
	hit := -1
	for i, c := range a.env.StepCollisions(a.pos, next) {
		if c {
			hit = i
			break
		}
	}
	if hit >= 0 {
		// Only the first wall is handled; the bounced step is not re-checked.
		a.vel = geometry.Reflect(a.vel, a.env.Wall(hit))
		if s := r2.Norm(a.vel); s > 0 {
			a.vel = r2.Scale(bounceSpeedFactor*p.SpeedMean/s, a.vel)
		}
		a.pos = r2.Add(a.pos, r2.Scale(dt, a.vel))
		a.last.Collided, a.last.Wall = true, hit
	} else {
		a.pos = next
	}
	a.recover()

	return a.measured(dt, prev, a.vel)
}

// repel applies the spring and conveyor terms for every wall closer than the
// repel distance. Thigmotaxis t weights them by 3(1-t)^2 and 6t^2.
func (a *Agent) repel(dt float64) {
	p := a.params
	d, v, t := p.WallRepelDistance, p.SpeedMean, p.Thigmotaxis

	var accel, conveyor r2.Vec
	for _, w := range a.env.VectorsFromWalls(a.pos) {
		x := r2.Norm(w)
		if x == 0 || x > d {
			continue
		}
		dir := r2.Scale(1/x, w)
		spring := (v / d) * (v / d) * (d - x)
		r := (d - x) / d
		push := v * (1 - math.Sqrt(1-r*r))
		accel = r2.Add(accel, r2.Scale(spring, dir))
		conveyor = r2.Add(conveyor, r2.Scale(push, dir))
	}

	a.vel = r2.Add(a.vel, r2.Scale(springWeight*(1-t)*(1-t)*dt, accel))
	a.pos = r2.Add(a.pos, r2.Scale(conveyorWeight*t*t*dt, conveyor))
}

func (a *Agent) step1D(dt float64) r2.Vec {
	p := a.params
	prev := a.pos
	a.pos.X += a.vel.X * dt
	if !a.env.Inside(a.pos) && a.env.Boundary() == environment.Solid {
		a.vel.X = -a.vel.X
	}
	a.recover()
	recorded := a.measured(dt, prev, a.vel)
	a.vel.X += OrnsteinUhlenbeck(dt, a.vel.X, p.SpeedMean, p.SpeedStd, p.SpeedCoherenceTime, a.noise.NormFloat64())
	return recorded
}

func (a *Agent) stepPlayback(dt float64) r2.Vec {
	prev := a.pos
	t := math.Mod(a.t, a.playback.Duration())
	a.pos = a.playback.Sample(t)
	if a.env.Dimensionality() == environment.Dim1D {
		a.pos.Y = 0
	}
	a.recover()

	last, ok := a.LastRecord()
	if !ok {
		a.vel = r2.Vec{}
		a.rotVel = 0
		return a.vel
	}
	a.vel = r2.Scale(1/dt, a.env.VectorBetween(a.pos, prev))
	if a.env.Dimensionality() == environment.Dim2D {
		turn := geometry.Angle(a.vel) - geometry.Angle(last.Vel)
		switch {
		case turn < -math.Pi:
			turn += 2 * math.Pi
		case turn > math.Pi:
			turn -= 2 * math.Pi
		}
		a.rotVel = turn / dt
	}
	return a.vel
}

// recover pulls the position back inside the arena after a step.
func (a *Agent) recover() {
	if !a.env.Inside(a.pos) {
		a.pos = a.env.ClampOrWrap(a.pos)
		a.last.Recovered = true
	}
}

// measured is the boundary-aware displacement since the last record divided
// by dt. Before the first record it is the policy velocity.
func (a *Agent) measured(dt float64, prev, fallback r2.Vec) r2.Vec {
	if len(a.history) == 0 {
		return fallback
	}
	return r2.Scale(1/dt, a.env.VectorBetween(a.pos, prev))
}
