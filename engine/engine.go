// Package engine maintains a live colorimeter session: the current
// measurement conditions, the calibration set and its fit, and the
// ticker-driven bleaching and auto-calibration loops. All quantitative
// logic lives in the pure core packages; the engine owns the state and
// threads it through them.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taggatron/Colorimetrybetalain/bleach"
	"github.com/taggatron/Colorimetrybetalain/calibrate"
	"github.com/taggatron/Colorimetrybetalain/measure"
	"github.com/taggatron/Colorimetrybetalain/profile"
	"github.com/taggatron/Colorimetrybetalain/spectra"
)

// Condition is a predicate over the current bleaching concentration.
type Condition func(concentrationMilliMolar float64) bool

// Action is triggered when a rule's condition is met during bleaching.
type Action func(e *Engine) error

// Rule pairs a condition with an action checked on every bleaching tick.
type Rule struct {
	Name      string
	Condition Condition
	Action    Action
	Enabled   bool
}

// Engine is a single colorimeter session. Methods are safe for concurrent
// use; the ticker loops run in background goroutines and can be stopped
// idempotently.
type Engine struct {
	id  uuid.UUID
	pro profile.Profile
	sim *measure.Simulator
	rng *rand.Rand
	log zerolog.Logger

	mu          sync.RWMutex
	conditions  measure.Conditions
	lastReading measure.Reading
	set         calibrate.Set
	rules       []Rule

	run    *bleach.Run
	series *bleach.Series

	bleaching    bool
	bleachCancel context.CancelFunc

	autoCal       bool
	autoCalCancel context.CancelFunc
	autoCalIndex  int
}

// New creates a session over the given instrument profile. A nil rng gets a
// time-seeded source; tests inject a fixed seed for determinism.
func New(p profile.Profile, logger zerolog.Logger, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id := uuid.New()
	e := &Engine{
		id:  id,
		pro: p,
		sim: measure.NewSimulator(p.Spectrum, measure.NewNoiseSource(p.NoiseSigma, rng)),
		rng: rng,
		log: logger.With().Str("component", "engine").Str("session", id.String()).Logger(),
		conditions: measure.Conditions{
			WavelengthNm:            p.Spectrum.PeakWavelengthNm,
			ConcentrationMilliMolar: p.ConcentrationMax / 2,
			PathLengthCm:            p.PathLengthCm,
			NoiseEnabled:            true,
		},
		set:    calibrate.NewSet(),
		series: bleach.NewSeries(p.SeriesCapacity),
	}
	e.sim.FullScale = p.FullScale
	return e
}

// SessionID returns the session identity.
func (e *Engine) SessionID() uuid.UUID {
	return e.id
}

// Profile returns the instrument profile the session runs on.
func (e *Engine) Profile() profile.Profile {
	return e.pro
}

// SetConditions updates the measurement conditions, clamping wavelength and
// concentration into the profile's input ranges. Path length is fixed by
// the profile.
func (e *Engine) SetConditions(c measure.Conditions) measure.Conditions {
	c.WavelengthNm = clamp(c.WavelengthNm, e.pro.WavelengthMinNm, e.pro.WavelengthMaxNm)
	c.ConcentrationMilliMolar = clamp(c.ConcentrationMilliMolar, e.pro.ConcentrationMin, e.pro.ConcentrationMax)
	c.PathLengthCm = e.pro.PathLengthCm

	e.mu.Lock()
	e.conditions = c
	e.mu.Unlock()
	return c
}

// Conditions returns the current measurement conditions.
func (e *Engine) Conditions() measure.Conditions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.conditions
}

// Simulate evaluates the instrument under the current conditions without
// recording anything, for live display.
func (e *Engine) Simulate() measure.Reading {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.sim.Simulate(e.conditions)
	e.lastReading = r
	return r
}

// Measure simulates a reading under the current conditions, records it as a
// persistent calibration point, and returns the reading with the refreshed
// fit.
func (e *Engine) Measure() (measure.Reading, calibrate.LinearFit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.sim.Simulate(e.conditions)
	e.lastReading = r
	e.set = e.set.Add(e.conditions.ConcentrationMilliMolar, r.Absorbance)
	fit := calibrate.Fit(e.set)
	e.log.Debug().
		Float64("concentration", e.conditions.ConcentrationMilliMolar).
		Float64("absorbance", r.Absorbance).
		Int("points", fit.N).
		Msg("recorded calibration point")
	return r, fit
}

// UnknownResult reports one unknown-sample probe: the hidden true
// concentration, the measured reading, and the concentration estimated by
// inverting the current calibration fit.
type UnknownResult struct {
	TrueConcentrationMilliMolar float64             `json:"trueConcentrationMilliMolar"`
	Reading                     measure.Reading     `json:"reading"`
	EstimatedMilliMolar         float64             `json:"estimatedMilliMolar"`
	Fit                         calibrate.LinearFit `json:"fit"`
}

// ProbeUnknown draws a random "unknown" concentration within the profile's
// input range, measures it under the current optical conditions, records it
// as a temporary display point, and estimates its concentration from the
// regression fit over the persistent points. The estimate deliberately
// comes from the fit, never from inverting the physical model.
func (e *Engine) ProbeUnknown() UnknownResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	span := e.pro.ConcentrationMax - e.pro.ConcentrationMin
	trueConc := e.pro.ConcentrationMin + e.rng.Float64()*span

	c := e.conditions
	c.ConcentrationMilliMolar = trueConc
	r := e.sim.Simulate(c)

	e.set = e.set.AddTemporary(trueConc, r.Absorbance)
	fit := calibrate.Fit(e.set)
	est := calibrate.EstimateConcentration(r.Absorbance, fit)

	e.log.Debug().
		Float64("true", trueConc).
		Float64("estimate", est).
		Msg("unknown sample probed")

	return UnknownResult{
		TrueConcentrationMilliMolar: trueConc,
		Reading:                     r,
		EstimatedMilliMolar:         est,
		Fit:                         fit,
	}
}

// ClearProbes strips temporary probe points once their display concludes.
func (e *Engine) ClearProbes() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = e.set.DropTemporary()
}

// ClearCalibration empties the calibration set.
func (e *Engine) ClearCalibration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = e.set.Clear()
}

// CalibrationSet returns the current calibration set.
func (e *Engine) CalibrationSet() calibrate.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set
}

// Fit recomputes the least-squares fit over the persistent points.
func (e *Engine) Fit() calibrate.LinearFit {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return calibrate.Fit(e.set)
}

// Scan samples the spectral curves over the profile's wavelength range at
// the current concentration and path length.
func (e *Engine) Scan() (epsilon, absorbance []spectra.Sample) {
	e.mu.RLock()
	c := e.conditions
	e.mu.RUnlock()
	p := e.pro
	epsilon = p.Spectrum.EpsilonCurve(p.WavelengthMinNm, p.WavelengthMaxNm, p.WavelengthStep)
	absorbance = p.Spectrum.AbsorbanceCurve(p.WavelengthMinNm, p.WavelengthMaxNm, p.WavelengthStep,
		c.ConcentrationMilliMolar, c.PathLengthCm)
	return epsilon, absorbance
}

// AddRule registers a condition-action rule checked after every bleaching
// tick. Action errors are logged, not propagated; the tick loop keeps
// running.
func (e *Engine) AddRule(name string, condition Condition, action Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, Rule{Name: name, Condition: condition, Action: action, Enabled: true})
}

// ConcentrationBelow returns a condition met once concentration falls under
// the threshold.
func ConcentrationBelow(threshold float64) Condition {
	return func(c float64) bool {
		return c < threshold
	}
}

// StartBleach begins a photobleaching run from the current concentration
// with the given rate constant (1/min); a non-positive rate falls back to
// the profile default. Starting while a run is active is a no-op and
// returns false.
func (e *Engine) StartBleach(ctx context.Context, ratePerMinute float64) bool {
	if ratePerMinute <= 0 {
		ratePerMinute = e.pro.BleachRatePerMinute
	}

	e.mu.Lock()
	if e.bleaching {
		e.mu.Unlock()
		return false
	}
	e.bleaching = true
	e.run = bleach.Start(e.conditions.ConcentrationMilliMolar, ratePerMinute)
	e.series.Reset()
	e.series.Append(bleach.TimeSeriesPoint{
		ElapsedMinutes:          0,
		ConcentrationMilliMolar: e.run.StartConcentration,
	})
	childCtx, cancel := context.WithCancel(ctx)
	e.bleachCancel = cancel
	runID := e.run.ID
	e.mu.Unlock()

	e.log.Info().Str("run", runID.String()).Float64("k", ratePerMinute).Msg("bleaching started")

	interval := e.pro.BleachTick()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-childCtx.Done():
				e.mu.Lock()
				e.bleaching = false
				e.mu.Unlock()
				return
			case <-ticker.C:
				e.StepBleach(interval.Minutes())
			}
		}
	}()
	return true
}

// StepBleach advances the active bleaching run by dt minutes, updates the
// session concentration, appends to the time series, and checks rules.
// Exposed so a test harness or single-step loop can drive synthetic time;
// a no-op when no run is active.
func (e *Engine) StepBleach(dtMinutes float64) {
	e.mu.Lock()
	if e.run == nil {
		e.mu.Unlock()
		return
	}
	c := e.run.Advance(dtMinutes)
	e.conditions.ConcentrationMilliMolar = c
	e.series.Append(bleach.TimeSeriesPoint{
		ElapsedMinutes:          e.run.ElapsedMinutes(),
		ConcentrationMilliMolar: c,
	})
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	e.mu.Unlock()

	for _, rule := range rules {
		if rule.Enabled && rule.Condition(c) {
			if err := rule.Action(e); err != nil {
				e.log.Error().Err(err).Str("rule", rule.Name).Msg("rule action failed")
			}
		}
	}
}

// StopBleach halts the bleaching loop. Idempotent; the run's final
// concentration remains the session concentration.
func (e *Engine) StopBleach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bleachCancel != nil {
		e.bleachCancel()
		e.bleachCancel = nil
	}
	e.bleaching = false
	e.run = nil
}

// IsBleaching reports whether a bleaching run is active.
func (e *Engine) IsBleaching() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bleaching
}

// Series returns the retained concentration-vs-time history, oldest first.
func (e *Engine) Series() []bleach.TimeSeriesPoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.series.Points()
}

// StartAutoCal begins the automatic calibration sequence, stepping the
// profile's target concentrations one measurement per tick. Starting while
// a sequence is active is a no-op and returns false; the sequence stops
// itself after the last target.
func (e *Engine) StartAutoCal(ctx context.Context) bool {
	e.mu.Lock()
	if e.autoCal || len(e.pro.AutoCalTargets) == 0 {
		e.mu.Unlock()
		return false
	}
	e.autoCal = true
	e.autoCalIndex = 0
	childCtx, cancel := context.WithCancel(ctx)
	e.autoCalCancel = cancel
	e.mu.Unlock()

	e.log.Info().Int("targets", len(e.pro.AutoCalTargets)).Msg("auto-calibration started")

	go func() {
		ticker := time.NewTicker(e.pro.AutoCalTick())
		defer ticker.Stop()
		for {
			select {
			case <-childCtx.Done():
				e.mu.Lock()
				e.autoCal = false
				e.mu.Unlock()
				return
			case <-ticker.C:
				if !e.StepAutoCal() {
					e.StopAutoCal()
					return
				}
			}
		}
	}()
	return true
}

// StepAutoCal performs one auto-calibration step: set the next target
// concentration, measure, record. Returns false once all targets are done.
// Exposed so tests and batch runs can drive the sequence without timers.
func (e *Engine) StepAutoCal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.autoCalIndex >= len(e.pro.AutoCalTargets) {
		return false
	}
	target := e.pro.AutoCalTargets[e.autoCalIndex]
	e.autoCalIndex++
	e.conditions.ConcentrationMilliMolar = clamp(target, e.pro.ConcentrationMin, e.pro.ConcentrationMax)
	r := e.sim.Simulate(e.conditions)
	e.lastReading = r
	e.set = e.set.Add(e.conditions.ConcentrationMilliMolar, r.Absorbance)
	return e.autoCalIndex < len(e.pro.AutoCalTargets)
}

// StopAutoCal halts the auto-calibration sequence. Idempotent; points
// already recorded stay in the set.
func (e *Engine) StopAutoCal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.autoCalCancel != nil {
		e.autoCalCancel()
		e.autoCalCancel = nil
	}
	e.autoCal = false
}

// IsAutoCalibrating reports whether the sequence is active.
func (e *Engine) IsAutoCalibrating() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.autoCal
}

// LastReading returns the most recent simulated reading.
func (e *Engine) LastReading() measure.Reading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastReading
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
