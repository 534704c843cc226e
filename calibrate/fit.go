package calibrate

import (
	"gonum.org/v1/gonum/stat"
)

// LinearFit is the least-squares calibration line A = Slope·c + Intercept
// with its coefficient of determination. A fit over fewer than two
// persistent points, or over points with no concentration spread, is the
// degenerate zero fit with Defined=false; callers should render it as
// undefined rather than 0.
type LinearFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
	N         int     `json:"n"`
	Defined   bool    `json:"defined"`
}

// Fit computes the ordinary least-squares line through the persistent
// points of the set, treating concentration as x and absorbance as y.
// The function is read-only over the set and never removes points.
func Fit(s Set) LinearFit {
	points := s.Persistent()
	n := len(points)
	if n < 2 {
		return LinearFit{N: n}
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, p := range points {
		x[i] = p.ConcentrationMilliMolar
		y[i] = p.Absorbance
	}

	// All-equal concentrations make the normal-equation denominator zero;
	// report the degenerate fit instead of letting NaN propagate.
	if stat.Variance(x, nil) == 0 {
		return LinearFit{N: n}
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	r2 := 0.0
	if stat.Variance(y, nil) > 0 {
		r2 = stat.RSquared(x, y, nil, intercept, slope)
	}

	return LinearFit{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		N:         n,
		Defined:   true,
	}
}

// LineEndpoints evaluates the fit at the two ends of a concentration range,
// producing the two (c, A) endpoints a chart needs to draw the fit line.
func (f LinearFit) LineEndpoints(cMin, cMax float64) [2][2]float64 {
	return [2][2]float64{
		{cMin, f.Slope*cMin + f.Intercept},
		{cMax, f.Slope*cMax + f.Intercept},
	}
}
