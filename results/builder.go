package results

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/taggatron/Colorimetrybetalain/bleach"
	"github.com/taggatron/Colorimetrybetalain/calibrate"
	"github.com/taggatron/Colorimetrybetalain/engine"
)

// Undefined is rendered in place of fit statistics when the regression is
// degenerate (fewer than two points or no concentration spread).
const Undefined = "—"

// Builder assembles a Report from a live session.
type Builder struct {
	report Report
}

// NewBuilder creates a report builder with metadata filled in.
func NewBuilder() *Builder {
	return &Builder{
		report: Report{
			Version: SchemaVersion,
			Metadata: Metadata{
				Timestamp: time.Now(),
				Status:    "success",
			},
		},
	}
}

// FromEngine captures the session's full renderable state.
func (b *Builder) FromEngine(e *engine.Engine) *Builder {
	b.report.Metadata.SessionID = e.SessionID().String()
	b.report.Profile = e.Profile()
	b.report.Conditions = e.Conditions()
	b.report.Reading = NewReadingView(e.LastReading().Absorbance, e.LastReading().Transmittance, e.LastReading().DetectorSignal)

	eps, abs := e.Scan()
	b.report.Spectrum = SpectrumView{Epsilon: eps, Absorbance: abs}

	set := e.CalibrationSet()
	fit := e.Fit()
	b.report.Calibration = CalibrationView{
		Points:  set.Points(),
		Fit:     fit,
		FitLine: fit.LineEndpoints(e.Profile().ConcentrationMin, e.Profile().ConcentrationMax),
		Stats:   FormatFit(fit),
	}

	series := e.Series()
	if len(series) > 0 {
		b.report.TimeSeries = series
		stats := SummarizeSeries(series)
		b.report.Analysis = &stats
	}
	return b
}

// Build returns the assembled report.
func (b *Builder) Build() *Report {
	r := b.report
	return &r
}

// NewReadingView formats a raw reading for display, with transmittance as a
// percentage.
func NewReadingView(absorbance, transmittance, detectorSignal float64) ReadingView {
	return ReadingView{
		Absorbance:           absorbance,
		TransmittancePercent: transmittance * 100,
		DetectorSignal:       detectorSignal,
	}
}

// FormatFit renders fit statistics to 3 decimals, or em-dashes for a
// degenerate fit so no placeholder zero reaches the display.
func FormatFit(fit calibrate.LinearFit) FitStats {
	if !fit.Defined {
		return FitStats{Slope: Undefined, Intercept: Undefined, RSquared: Undefined}
	}
	return FitStats{
		Slope:     fmt.Sprintf("%.3f", fit.Slope),
		Intercept: fmt.Sprintf("%.3f", fit.Intercept),
		RSquared:  fmt.Sprintf("%.3f", fit.RSquared),
	}
}

// SummarizeSeries computes summary statistics over a bleaching trajectory.
func SummarizeSeries(series []bleach.TimeSeriesPoint) SeriesStats {
	if len(series) == 0 {
		return SeriesStats{}
	}
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.ConcentrationMilliMolar
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return SeriesStats{
		Points: len(series),
		Mean:   stat.Mean(values, nil),
		Min:    min,
		Max:    max,
		Final:  values[len(values)-1],
	}
}
