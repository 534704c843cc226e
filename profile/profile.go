// Package profile defines the instrument profile: every numeric constant
// the simulator depends on, exposed as startup configuration rather than
// hard-coded literals. Profiles round-trip through JSON so alternative
// instruments can be described in a file.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/taggatron/Colorimetrybetalain/bleach"
	"github.com/taggatron/Colorimetrybetalain/measure"
	"github.com/taggatron/Colorimetrybetalain/spectra"
)

// Profile is the complete instrument configuration.
type Profile struct {
	Spectrum spectra.Params `json:"spectrum"`

	// Detector
	NoiseSigma float64 `json:"noiseSigma"` // absorbance units
	FullScale  float64 `json:"fullScale"`  // normalized detector maximum

	// Cuvette and UI-bound input ranges
	PathLengthCm     float64 `json:"pathLengthCm"`
	WavelengthMinNm  float64 `json:"wavelengthMinNm"`
	WavelengthMaxNm  float64 `json:"wavelengthMaxNm"`
	WavelengthStep   float64 `json:"wavelengthStepNm"` // curve sampling step
	ConcentrationMin float64 `json:"concentrationMinMilliMolar"`
	ConcentrationMax float64 `json:"concentrationMaxMilliMolar"`

	// Timers and history
	BleachTickIntervalMs int     `json:"bleachTickIntervalMs"`
	AutoCalIntervalMs    int     `json:"autoCalIntervalMs"`
	SeriesCapacity       int     `json:"seriesCapacity"`
	BleachRatePerMinute  float64 `json:"bleachRatePerMinute"`

	// Auto-calibration target concentrations, stepped in order.
	AutoCalTargets []float64 `json:"autoCalTargets"`
}

// Default returns the profile matching the reference instrument.
func Default() Profile {
	return Profile{
		Spectrum:             spectra.DefaultParams(),
		NoiseSigma:           measure.DefaultNoiseSigma,
		FullScale:            measure.FullScaleSignal,
		PathLengthCm:         1,
		WavelengthMinNm:      380,
		WavelengthMaxNm:      700,
		WavelengthStep:       2,
		ConcentrationMin:     0,
		ConcentrationMax:     1,
		BleachTickIntervalMs: 250,
		AutoCalIntervalMs:    300,
		SeriesCapacity:       bleach.DefaultSeriesCapacity,
		BleachRatePerMinute:  0.1,
		AutoCalTargets:       []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0},
	}
}

// Validate checks the profile for values the simulator cannot run with.
func (p Profile) Validate() error {
	if p.Spectrum.SigmaNm <= 0 {
		return fmt.Errorf("spectrum sigma must be positive, got %g", p.Spectrum.SigmaNm)
	}
	if p.NoiseSigma < 0 {
		return fmt.Errorf("noise sigma must be non-negative, got %g", p.NoiseSigma)
	}
	if p.PathLengthCm <= 0 {
		return fmt.Errorf("path length must be positive, got %g", p.PathLengthCm)
	}
	if p.WavelengthMaxNm <= p.WavelengthMinNm {
		return fmt.Errorf("wavelength range [%g, %g] is empty", p.WavelengthMinNm, p.WavelengthMaxNm)
	}
	if p.WavelengthStep <= 0 {
		return fmt.Errorf("wavelength step must be positive, got %g", p.WavelengthStep)
	}
	if p.ConcentrationMax <= p.ConcentrationMin {
		return fmt.Errorf("concentration range [%g, %g] is empty", p.ConcentrationMin, p.ConcentrationMax)
	}
	if p.SeriesCapacity <= 0 {
		return fmt.Errorf("series capacity must be positive, got %d", p.SeriesCapacity)
	}
	if p.BleachTickIntervalMs <= 0 || p.AutoCalIntervalMs <= 0 {
		return fmt.Errorf("timer intervals must be positive")
	}
	return nil
}

// BleachTick returns the bleaching tick interval as a duration.
func (p Profile) BleachTick() time.Duration {
	return time.Duration(p.BleachTickIntervalMs) * time.Millisecond
}

// AutoCalTick returns the auto-calibration step interval as a duration.
func (p Profile) AutoCalTick() time.Duration {
	return time.Duration(p.AutoCalIntervalMs) * time.Millisecond
}

// FromJSON parses a profile, applying defaults for omitted fields.
func FromJSON(data []byte) (Profile, error) {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("invalid profile JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ToJSON renders the profile as indented JSON.
func (p Profile) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Load reads a profile from a file.
func Load(filename string) (Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return FromJSON(data)
}

// Save writes the profile to a file.
func (p Profile) Save(filename string) error {
	data, err := p.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
