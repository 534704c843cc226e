package calibrate

import "math"

// SlopeTolerance is the threshold below which a fit slope is treated as
// zero for inversion. Dividing by a slope this small would amplify noise
// into a meaningless estimate, so it is handled like the exact-zero case.
const SlopeTolerance = 1e-12

// EstimateConcentration inverts the calibration line to estimate the
// concentration that produced a measured absorbance:
//
//	c = (A - intercept) / slope
//
// An undefined fit or a flat slope cannot be inverted and yields 0.
func EstimateConcentration(measuredAbsorbance float64, fit LinearFit) float64 {
	if !fit.Defined || math.Abs(fit.Slope) < SlopeTolerance {
		return 0
	}
	return (measuredAbsorbance - fit.Intercept) / fit.Slope
}
