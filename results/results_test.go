package results

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taggatron/Colorimetrybetalain/bleach"
	"github.com/taggatron/Colorimetrybetalain/calibrate"
	"github.com/taggatron/Colorimetrybetalain/engine"
	"github.com/taggatron/Colorimetrybetalain/profile"
)

func TestFormatFit(t *testing.T) {
	got := FormatFit(calibrate.LinearFit{Slope: 5.0, Intercept: 0.12345, RSquared: 0.99876, N: 6, Defined: true})
	if got.Slope != "5.000" {
		t.Errorf("Expected slope 5.000, got %s", got.Slope)
	}
	if got.Intercept != "0.123" {
		t.Errorf("Expected intercept 0.123, got %s", got.Intercept)
	}
	if got.RSquared != "0.999" {
		t.Errorf("Expected R² 0.999, got %s", got.RSquared)
	}
}

func TestFormatFitUndefined(t *testing.T) {
	got := FormatFit(calibrate.LinearFit{})
	if got.Slope != Undefined || got.Intercept != Undefined || got.RSquared != Undefined {
		t.Errorf("Expected em-dashes for undefined fit, got %+v", got)
	}
}

func TestNewReadingView(t *testing.T) {
	v := NewReadingView(1.0, 0.1, 0.1)
	if math.Abs(v.TransmittancePercent-10) > 1e-12 {
		t.Errorf("Expected 10%% transmittance, got %f", v.TransmittancePercent)
	}
}

func TestSummarizeSeries(t *testing.T) {
	series := []bleach.TimeSeriesPoint{
		{ElapsedMinutes: 0, ConcentrationMilliMolar: 1.0},
		{ElapsedMinutes: 1, ConcentrationMilliMolar: 0.5},
		{ElapsedMinutes: 2, ConcentrationMilliMolar: 0.25},
	}
	s := SummarizeSeries(series)
	if s.Points != 3 {
		t.Errorf("Expected 3 points, got %d", s.Points)
	}
	if s.Max != 1.0 || s.Min != 0.25 || s.Final != 0.25 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if math.Abs(s.Mean-(1.75/3)) > 1e-12 {
		t.Errorf("Expected mean %f, got %f", 1.75/3, s.Mean)
	}
}

func TestBuildReportFromEngine(t *testing.T) {
	e := engine.New(profile.Default(), zerolog.Nop(), rand.New(rand.NewSource(1)))
	c := e.Conditions()
	c.NoiseEnabled = false
	c.WavelengthNm = 650
	e.SetConditions(c)
	for _, conc := range []float64{0, 0.5, 1.0} {
		cc := e.Conditions()
		cc.ConcentrationMilliMolar = conc
		e.SetConditions(cc)
		e.Measure()
	}

	r := NewBuilder().FromEngine(e).Build()

	if r.Version != SchemaVersion {
		t.Errorf("Expected schema version %s, got %s", SchemaVersion, r.Version)
	}
	if r.Metadata.SessionID == "" {
		t.Error("Expected session ID in metadata")
	}
	if len(r.Spectrum.Epsilon) == 0 || len(r.Spectrum.Absorbance) == 0 {
		t.Error("Expected sampled spectrum curves")
	}
	if len(r.Calibration.Points) != 3 {
		t.Errorf("Expected 3 calibration points, got %d", len(r.Calibration.Points))
	}
	if !r.Calibration.Fit.Defined {
		t.Error("Expected defined fit in report")
	}
	if r.Calibration.Stats.Slope == Undefined {
		t.Error("Expected formatted slope, got em-dash")
	}
	// Fit line endpoints span the profile concentration range
	if r.Calibration.FitLine[0][0] != 0 || r.Calibration.FitLine[1][0] != 1 {
		t.Errorf("Unexpected fit line endpoints %v", r.Calibration.FitLine)
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	e := engine.New(profile.Default(), zerolog.Nop(), rand.New(rand.NewSource(2)))
	e.Measure()
	r := NewBuilder().FromEngine(e).Build()

	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	back, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if back.Version != r.Version {
		t.Errorf("Version changed in round trip: %s vs %s", back.Version, r.Version)
	}
	if len(back.Calibration.Points) != len(r.Calibration.Points) {
		t.Errorf("Calibration points changed in round trip")
	}
}

func TestWriteCSV(t *testing.T) {
	set := calibrate.NewSet().Add(0, 0).Add(0.2, 1.003)
	path := filepath.Join(t.TempDir(), "cal.csv")

	if err := WriteCSV(set, path, false); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != calibrate.CSVHeader {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}
