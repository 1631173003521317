package motion

import (
	"errors"
	"math"
	"testing"
)

func TestOrnsteinUhlenbeckMeanReversion(t *testing.T) {
	tests := []struct {
		name  string
		x     float64
		drift float64
		want  float64
	}{
		{"above drift", 1, 0, -0.1},
		{"below drift", 0, 1, 0.1},
		{"at drift", 0.5, 0.5, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := OrnsteinUhlenbeck(0.1, tc.x, tc.drift, 2, 1, 0)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("OrnsteinUhlenbeck = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOrnsteinUhlenbeckNoise(t *testing.T) {
	// sigma = sqrt(2 * 0.5^2 / (1 * 0.01)) = sqrt(50), so the noise term is sqrt(50) * 0.01.
	got := OrnsteinUhlenbeck(0.01, 0, 0, 0.5, 1, 1)
	if want := math.Sqrt(50) * 0.01; math.Abs(got-want) > 1e-12 {
		t.Errorf("OrnsteinUhlenbeck = %v, want %v", got, want)
	}
}

func TestRayleighNormalRoundTrip(t *testing.T) {
	const sigma = 0.08
	for _, speed := range []float64{0.01, 0.05, 0.08, 0.15, 0.3} {
		z := RayleighToNormal(speed, sigma)
		if got := NormalToRayleigh(z, sigma); math.Abs(got-speed) > 1e-9 {
			t.Errorf("round trip of %v = %v", speed, got)
		}
	}
}

func TestRayleighCDF(t *testing.T) {
	const sigma = 0.1
	for _, x := range []float64{0.02, 0.1, 0.25} {
		want := 1 - math.Exp(-x*x/(2*sigma*sigma))
		if got := rayleigh(sigma).CDF(x); math.Abs(got-want) > 1e-12 {
			t.Errorf("CDF(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestRayleighMedianMapsToZero(t *testing.T) {
	const sigma = 0.2
	median := sigma * math.Sqrt(2*math.Ln2)
	if z := RayleighToNormal(median, sigma); math.Abs(z) > 1e-9 {
		t.Errorf("RayleighToNormal(median) = %v, want 0", z)
	}
}

func TestRayleighNormalExtremesStayFinite(t *testing.T) {
	tests := []struct {
		name string
		got  float64
	}{
		{"zero speed", RayleighToNormal(0, 0.08)},
		{"huge speed", RayleighToNormal(100, 0.08)},
		{"very negative z", NormalToRayleigh(-50, 0.08)},
		{"very positive z", NormalToRayleigh(50, 0.08)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if math.IsNaN(tc.got) || math.IsInf(tc.got, 0) {
				t.Errorf("got %v, want a finite value", tc.got)
			}
		})
	}
	if s := NormalToRayleigh(-50, 0.08); !(s > 0) {
		t.Errorf("NormalToRayleigh(-50) = %v, want positive", s)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero dt", func(p *Params) { p.DT = 0 }},
		{"zero speed mean", func(p *Params) { p.SpeedMean = 0 }},
		{"negative speed std", func(p *Params) { p.SpeedStd = -1 }},
		{"zero coherence time", func(p *Params) { p.SpeedCoherenceTime = 0 }},
		{"negative rotational std", func(p *Params) { p.RotationalVelocityStd = -0.1 }},
		{"thigmotaxis above one", func(p *Params) { p.Thigmotaxis = 1.5 }},
		{"NaN thigmotaxis", func(p *Params) { p.Thigmotaxis = math.NaN() }},
		{"zero repel distance", func(p *Params) { p.WallRepelDistance = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
}
