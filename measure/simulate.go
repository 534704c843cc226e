package measure

import (
	"github.com/taggatron/Colorimetrybetalain/spectra"
)

// FullScaleSignal is the normalized detector output for 100% transmittance.
const FullScaleSignal = 1.0

// Conditions are the transient inputs for one instrument evaluation.
type Conditions struct {
	WavelengthNm            float64 `json:"wavelengthNm"`
	ConcentrationMilliMolar float64 `json:"concentrationMilliMolar"`
	PathLengthCm            float64 `json:"pathLengthCm"`
	NoiseEnabled            bool    `json:"noiseEnabled"`
}

// Reading is the simulated instrument response for one evaluation.
type Reading struct {
	Absorbance     float64 `json:"absorbance"`
	Transmittance  float64 `json:"transmittance"`
	DetectorSignal float64 `json:"detectorSignal"`
}

// Simulator produces readings from the spectral model plus detector noise.
type Simulator struct {
	Params    spectra.Params
	Noise     *NoiseSource
	FullScale float64
}

// NewSimulator creates a simulator over the given spectrum. A nil noise
// source gets the default sigma with a fresh random stream.
func NewSimulator(params spectra.Params, noise *NoiseSource) *Simulator {
	if noise == nil {
		noise = NewNoiseSource(DefaultNoiseSigma, nil)
	}
	return &Simulator{Params: params, Noise: noise, FullScale: FullScaleSignal}
}

// Simulate evaluates the instrument once under the given conditions.
// When noise is enabled a Gaussian sample is added to the true absorbance;
// the result is clamped to the physical floor of 0 before transmittance and
// detector signal are derived. Each call is independent.
func (s *Simulator) Simulate(c Conditions) Reading {
	a := s.Params.Absorbance(c.WavelengthNm, c.ConcentrationMilliMolar, c.PathLengthCm)
	if c.NoiseEnabled {
		a += s.Noise.Sample()
	}
	if a < 0 {
		a = 0
	}
	t := spectra.Transmittance(a)
	return Reading{
		Absorbance:     a,
		Transmittance:  t,
		DetectorSignal: t * s.FullScale,
	}
}
