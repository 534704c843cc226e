// Package measure simulates single-beam colorimeter readings: a true
// Beer-Lambert absorbance perturbed by calibrated detector noise, with the
// derived transmittance and normalized detector signal.
package measure

import (
	"math"
	"math/rand"
)

// DefaultNoiseSigma is the detector noise standard deviation in absorbance
// units.
const DefaultNoiseSigma = 0.005

// NoiseSource draws zero-mean Gaussian noise samples via the Box-Muller
// transform of two independent uniform(0,1) draws. The random source is
// injectable so simulations can be made deterministic in tests.
type NoiseSource struct {
	Sigma float64
	rng   *rand.Rand
}

// NewNoiseSource creates a noise source with the given standard deviation.
// A nil rng falls back to a source seeded from the global generator.
func NewNoiseSource(sigma float64, rng *rand.Rand) *NoiseSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &NoiseSource{Sigma: sigma, rng: rng}
}

// Sample returns one zero-mean Gaussian sample scaled by Sigma.
func (n *NoiseSource) Sample() float64 {
	return n.Sigma * n.standardNormal()
}

// standardNormal draws a standard normal variate using Box-Muller.
// Uniform draws of exactly 0 are resampled so log(0) can never occur; the
// retry loop terminates with probability 1.
func (n *NoiseSource) standardNormal() float64 {
	u1 := n.rng.Float64()
	for u1 == 0 {
		u1 = n.rng.Float64()
	}
	u2 := n.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
