// Package results defines the structured output format for colorimeter
// sessions: the rendering payloads the UI layer consumes and the exportable
// session report.
package results

import (
	"time"

	"github.com/taggatron/Colorimetrybetalain/bleach"
	"github.com/taggatron/Colorimetrybetalain/calibrate"
	"github.com/taggatron/Colorimetrybetalain/measure"
	"github.com/taggatron/Colorimetrybetalain/profile"
	"github.com/taggatron/Colorimetrybetalain/spectra"
)

const SchemaVersion = "1.0.0"

// Report contains a complete session snapshot for export or rendering.
type Report struct {
	Version     string                   `json:"version"`
	Metadata    Metadata                 `json:"metadata"`
	Profile     profile.Profile          `json:"profile"`
	Conditions  measure.Conditions       `json:"conditions"`
	Reading     ReadingView              `json:"reading"`
	Spectrum    SpectrumView             `json:"spectrum"`
	Calibration CalibrationView          `json:"calibration"`
	TimeSeries  []bleach.TimeSeriesPoint `json:"timeSeries,omitempty"`
	Analysis    *SeriesStats             `json:"analysis,omitempty"`
}

// Metadata records when and by which session the report was produced.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	Status    string    `json:"status"`
}

// ReadingView is the instrument response formatted for display.
type ReadingView struct {
	Absorbance           float64 `json:"absorbance"`
	TransmittancePercent float64 `json:"transmittancePercent"`
	DetectorSignal       float64 `json:"detectorSignal"`
}

// SpectrumView carries the sampled curves for the spectrum chart.
type SpectrumView struct {
	Epsilon    []spectra.Sample `json:"epsilon"`
	Absorbance []spectra.Sample `json:"absorbance"`
}

// CalibrationView carries the scatter points, the fit line as two
// endpoints, and the fit statistics formatted for display.
type CalibrationView struct {
	Points  []calibrate.Point   `json:"points"`
	Fit     calibrate.LinearFit `json:"fit"`
	FitLine [2][2]float64       `json:"fitLine"`
	Stats   FitStats            `json:"stats"`
}

// FitStats is the fit rendered to 3 decimals; undefined fits show an
// em-dash instead of a misleading 0.
type FitStats struct {
	Slope     string `json:"slope"`
	Intercept string `json:"intercept"`
	RSquared  string `json:"rSquared"`
}

// SeriesStats summarizes a bleaching time series.
type SeriesStats struct {
	Points int     `json:"points"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Final  float64 `json:"final"`
}
