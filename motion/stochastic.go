package motion

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Noise supplies standard normal samples. *rand.Rand satisfies it.
type Noise interface {
	NormFloat64() float64
}

// uniformClamp keeps probabilities away from 0 and 1 so normal quantiles stay finite.
const uniformClamp = 1e-6

// OrnsteinUhlenbeck returns the increment of an OU process with the given
// drift, noise scale and coherence time over dt, for standard normal sample n.
func OrnsteinUhlenbeck(dt, x, drift, noiseScale, coherenceTime, n float64) float64 {
	theta := 1 / coherenceTime
	sigma := math.Sqrt(2 * noiseScale * noiseScale / (coherenceTime * dt))
	return theta*(drift-x)*dt + sigma*dt*n
}

// rayleigh returns the Rayleigh(sigma) distribution, a Weibull with shape 2
// and scale sigma*sqrt(2).
func rayleigh(sigma float64) distuv.Weibull {
	return distuv.Weibull{K: 2, Lambda: sigma * math.Sqrt2}
}

// RayleighToNormal maps a Rayleigh(sigma) distributed value to the standard
// normal value with the same cumulative probability.
func RayleighToNormal(x, sigma float64) float64 {
	u := rayleigh(sigma).CDF(math.Max(x, 0))
	u = math.Min(math.Max(u, uniformClamp), 1-uniformClamp)
	return distuv.UnitNormal.Quantile(u)
}

// NormalToRayleigh is the inverse of RayleighToNormal.
func NormalToRayleigh(z, sigma float64) float64 {
	u := distuv.UnitNormal.CDF(z)
	u = math.Min(math.Max(u, uniformClamp), 1-uniformClamp)
	return rayleigh(sigma).Quantile(u)
}
