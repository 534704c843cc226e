package httpapi

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taggatron/Colorimetrybetalain/calibrate"
	"github.com/taggatron/Colorimetrybetalain/engine"
	"github.com/taggatron/Colorimetrybetalain/measure"
	"github.com/taggatron/Colorimetrybetalain/profile"
	"github.com/taggatron/Colorimetrybetalain/results"
)

func newTestServer() (*Server, *engine.Engine) {
	e := engine.New(profile.Default(), zerolog.Nop(), rand.New(rand.NewSource(1)))
	c := e.Conditions()
	c.NoiseEnabled = false
	c.WavelengthNm = 650
	e.SetConditions(c)
	return NewServer(e), e
}

func doJSON(t *testing.T, s *Server, method, path, body string, want int, out any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != want {
		t.Fatalf("%s %s: expected status %d, got %d (%s)", method, path, want, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
}

func TestStatusEndpoint(t *testing.T) {
	s, e := newTestServer()

	var st statusResponse
	doJSON(t, s, http.MethodGet, "/api/status", "", http.StatusOK, &st)
	if st.SessionID != e.SessionID().String() {
		t.Errorf("Expected session ID %s, got %s", e.SessionID(), st.SessionID)
	}
	if st.Bleaching || st.AutoCalibrating {
		t.Error("Expected idle session")
	}
}

func TestConditionsRoundTrip(t *testing.T) {
	s, _ := newTestServer()

	var got measure.Conditions
	doJSON(t, s, http.MethodPost, "/api/conditions",
		`{"wavelengthNm": 600, "concentrationMilliMolar": 0.3, "noiseEnabled": false}`,
		http.StatusOK, &got)
	if got.WavelengthNm != 600 || got.ConcentrationMilliMolar != 0.3 {
		t.Errorf("Unexpected conditions %+v", got)
	}

	var read measure.Conditions
	doJSON(t, s, http.MethodGet, "/api/conditions", "", http.StatusOK, &read)
	if read != got {
		t.Errorf("GET returned %+v, want %+v", read, got)
	}
}

func TestConditionsClamped(t *testing.T) {
	s, _ := newTestServer()

	var got measure.Conditions
	doJSON(t, s, http.MethodPost, "/api/conditions",
		`{"wavelengthNm": 9999, "concentrationMilliMolar": -3}`,
		http.StatusOK, &got)
	if got.WavelengthNm != 700 {
		t.Errorf("Expected clamped wavelength 700, got %f", got.WavelengthNm)
	}
	if got.ConcentrationMilliMolar != 0 {
		t.Errorf("Expected clamped concentration 0, got %f", got.ConcentrationMilliMolar)
	}
}

func TestConditionsBadJSON(t *testing.T) {
	s, _ := newTestServer()
	doJSON(t, s, http.MethodPost, "/api/conditions", `{nope`, http.StatusBadRequest, nil)
}

func TestMeasureRecordsPoint(t *testing.T) {
	s, e := newTestServer()

	var resp measureResponse
	doJSON(t, s, http.MethodPost, "/api/measure", "", http.StatusOK, &resp)
	if e.CalibrationSet().Len() != 1 {
		t.Errorf("Expected 1 calibration point, got %d", e.CalibrationSet().Len())
	}
	if resp.Fit.Slope != results.Undefined {
		t.Errorf("Expected undefined fit after one point, got %s", resp.Fit.Slope)
	}
}

func TestScanEndpoint(t *testing.T) {
	s, _ := newTestServer()

	var view results.SpectrumView
	doJSON(t, s, http.MethodGet, "/api/scan", "", http.StatusOK, &view)
	if len(view.Epsilon) != 161 {
		t.Errorf("Expected 161 epsilon samples, got %d", len(view.Epsilon))
	}
}

func TestCalibrationLifecycle(t *testing.T) {
	s, e := newTestServer()

	for _, conc := range []float64{0, 0.5, 1.0} {
		c := e.Conditions()
		c.ConcentrationMilliMolar = conc
		e.SetConditions(c)
		doJSON(t, s, http.MethodPost, "/api/measure", "", http.StatusOK, nil)
	}

	var view results.CalibrationView
	doJSON(t, s, http.MethodGet, "/api/calibration", "", http.StatusOK, &view)
	if len(view.Points) != 3 {
		t.Errorf("Expected 3 points, got %d", len(view.Points))
	}
	if !view.Fit.Defined {
		t.Error("Expected defined fit")
	}

	// CSV export
	req := httptest.NewRequest(http.MethodGet, "/api/calibration/csv", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("CSV export status %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), calibrate.CSVHeader) {
		t.Errorf("CSV missing header: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}

	doJSON(t, s, http.MethodPost, "/api/calibration/clear", "", http.StatusNoContent, nil)
	if e.CalibrationSet().Len() != 0 {
		t.Error("Expected cleared calibration set")
	}
}

func TestUnknownProbe(t *testing.T) {
	s, e := newTestServer()
	for _, conc := range []float64{0, 0.5, 1.0} {
		c := e.Conditions()
		c.ConcentrationMilliMolar = conc
		e.SetConditions(c)
		e.Measure()
	}

	var res engine.UnknownResult
	doJSON(t, s, http.MethodPost, "/api/unknown", "", http.StatusOK, &res)
	if res.TrueConcentrationMilliMolar < 0 || res.TrueConcentrationMilliMolar > 1 {
		t.Errorf("True concentration %f out of range", res.TrueConcentrationMilliMolar)
	}
	if e.CalibrationSet().Len() != 4 {
		t.Errorf("Expected probe point recorded, got %d points", e.CalibrationSet().Len())
	}

	doJSON(t, s, http.MethodPost, "/api/unknown/clear", "", http.StatusNoContent, nil)
	if e.CalibrationSet().Len() != 3 {
		t.Errorf("Expected probe cleared, got %d points", e.CalibrationSet().Len())
	}
}

func TestBleachLifecycle(t *testing.T) {
	s, e := newTestServer()

	doJSON(t, s, http.MethodPost, "/api/bleach/start", `{"ratePerMinute": 0.2}`, http.StatusAccepted, nil)
	if !e.IsBleaching() {
		t.Fatal("Expected bleaching to be running")
	}

	// Second start conflicts
	doJSON(t, s, http.MethodPost, "/api/bleach/start", "", http.StatusConflict, nil)

	var series []map[string]float64
	doJSON(t, s, http.MethodGet, "/api/bleach/series", "", http.StatusOK, &series)
	if len(series) == 0 {
		t.Error("Expected initial series point")
	}

	doJSON(t, s, http.MethodPost, "/api/bleach/stop", "", http.StatusNoContent, nil)
	if e.IsBleaching() {
		t.Error("Expected bleaching stopped")
	}
	// Stop again is fine
	doJSON(t, s, http.MethodPost, "/api/bleach/stop", "", http.StatusNoContent, nil)
}

func TestAutoCalConflict(t *testing.T) {
	s, e := newTestServer()

	doJSON(t, s, http.MethodPost, "/api/autocal/start", "", http.StatusAccepted, nil)
	doJSON(t, s, http.MethodPost, "/api/autocal/start", "", http.StatusConflict, nil)
	doJSON(t, s, http.MethodPost, "/api/autocal/stop", "", http.StatusNoContent, nil)
	if e.IsAutoCalibrating() {
		t.Error("Expected auto-calibration stopped")
	}
}

func TestReportEndpoint(t *testing.T) {
	s, _ := newTestServer()
	doJSON(t, s, http.MethodPost, "/api/measure", "", http.StatusOK, nil)

	var report results.Report
	doJSON(t, s, http.MethodGet, "/api/report", "", http.StatusOK, &report)
	if report.Version != results.SchemaVersion {
		t.Errorf("Expected schema version %s, got %s", results.SchemaVersion, report.Version)
	}
	if len(report.Calibration.Points) != 1 {
		t.Errorf("Expected 1 point in report, got %d", len(report.Calibration.Points))
	}
}
