// Package spectra implements the synthetic betalain absorption model:
// a Gaussian molar-absorptivity peak over a flat baseline, combined with
// the Beer-Lambert law to produce absorbance and transmittance.
package spectra

import "math"

// Params defines the synthetic pigment spectrum. Molar absorptivity is
// modeled as a Gaussian peak plus a wavelength-independent baseline.
type Params struct {
	PeakWavelengthNm float64 `json:"peakWavelengthNm"`
	PeakEpsilon      float64 `json:"peakEpsilon"` // L·mol⁻¹·cm⁻¹ at the peak
	SigmaNm          float64 `json:"sigmaNm"`
	BaselineEpsilon  float64 `json:"baselineEpsilon"`
}

// DefaultParams returns the betalain-like spectrum used by the simulator:
// peak at 538 nm, 60000 L·mol⁻¹·cm⁻¹, width 35 nm, baseline 150.
func DefaultParams() Params {
	return Params{
		PeakWavelengthNm: 538,
		PeakEpsilon:      60000,
		SigmaNm:          35,
		BaselineEpsilon:  150,
	}
}

// EpsilonAt returns the molar absorptivity at the given wavelength.
// Never below BaselineEpsilon.
func (p Params) EpsilonAt(wavelengthNm float64) float64 {
	z := (wavelengthNm - p.PeakWavelengthNm) / p.SigmaNm
	return p.PeakEpsilon*math.Exp(-0.5*z*z) + p.BaselineEpsilon
}

// Absorbance computes Beer-Lambert absorbance A = ε·c·l for a concentration
// given in millimolar and a path length in cm. Negative concentrations are
// clamped to zero (no analyte), so the result is always non-negative for
// non-negative path lengths.
func (p Params) Absorbance(wavelengthNm, concentrationMilliMolar, pathLengthCm float64) float64 {
	if concentrationMilliMolar <= 0 {
		return 0
	}
	molar := concentrationMilliMolar / 1000.0
	return p.EpsilonAt(wavelengthNm) * molar * pathLengthCm
}

// Transmittance converts absorbance to the transmitted fraction T = 10^-A.
// T(0) = 1 and T decreases monotonically toward 0; underflow to exactly 0
// for very large A is acceptable.
func Transmittance(absorbance float64) float64 {
	return math.Pow(10, -absorbance)
}
