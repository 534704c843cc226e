package spectra

import "gonum.org/v1/gonum/floats"

// Sample is one point of a rendered spectral curve.
type Sample struct {
	WavelengthNm float64 `json:"wavelengthNm"`
	Value        float64 `json:"value"`
}

// Grid returns an evenly spaced wavelength grid covering [lo, hi] with the
// given step. The last point is pinned to hi so the visible range is always
// fully covered.
func Grid(lo, hi, step float64) []float64 {
	if step <= 0 || hi <= lo {
		return []float64{lo}
	}
	n := int((hi-lo)/step) + 1
	if float64(n-1)*step < hi-lo {
		n++
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// EpsilonCurve samples ε(λ) over [lo, hi] at the given step, in ascending
// wavelength order, for plotting the absorption spectrum.
func (p Params) EpsilonCurve(lo, hi, step float64) []Sample {
	grid := Grid(lo, hi, step)
	out := make([]Sample, len(grid))
	for i, w := range grid {
		out[i] = Sample{WavelengthNm: w, Value: p.EpsilonAt(w)}
	}
	return out
}

// AbsorbanceCurve samples A(λ) for a fixed concentration and path length
// over [lo, hi] at the given step.
func (p Params) AbsorbanceCurve(lo, hi, step, concentrationMilliMolar, pathLengthCm float64) []Sample {
	grid := Grid(lo, hi, step)
	out := make([]Sample, len(grid))
	for i, w := range grid {
		out[i] = Sample{WavelengthNm: w, Value: p.Absorbance(w, concentrationMilliMolar, pathLengthCm)}
	}
	return out
}
