package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/taggatron/Colorimetrybetalain/engine"
	"github.com/taggatron/Colorimetrybetalain/results"
)

func calibrateCmd(args []string) error {
	fs := flag.NewFlagSet("calibrate", flag.ExitOnError)
	profilePath := fs.String("profile", "", "Instrument profile JSON (default: built-in)")
	wavelength := fs.Float64("wavelength", 538, "Measurement wavelength in nm")
	noise := fs.Bool("noise", true, "Enable detector noise")
	csvPath := fs.String("csv", "", "Export the calibration points as CSV")
	reportPath := fs.String("report", "", "Write the full session report JSON")
	unknowns := fs.Int("unknowns", 0, "Probe this many unknown samples after calibrating")
	verbose := fs.Bool("verbose", false, "Debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: colorimeter calibrate [options]

Step the profile's auto-calibration targets, fit the calibration line, and
print slope, intercept, and R². Optionally probe unknown samples against
the fitted line.

Examples:
  colorimeter calibrate --wavelength 538
  colorimeter calibrate --noise=false --csv calibration.csv
  colorimeter calibrate --unknowns 3 --report session.json

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}

	e := engine.New(p, newLogger(*verbose), nil)
	c := e.Conditions()
	c.WavelengthNm = *wavelength
	c.NoiseEnabled = *noise
	e.SetConditions(c)

	// Drive the sequence synchronously; the ticker loop is for live UIs.
	for e.StepAutoCal() {
	}

	fit := e.Fit()
	stats := results.FormatFit(fit)
	fmt.Printf("Calibration: %d points at %g nm\n", fit.N, *wavelength)
	fmt.Printf("  slope     = %s A/mM\n", stats.Slope)
	fmt.Printf("  intercept = %s A\n", stats.Intercept)
	fmt.Printf("  R²        = %s\n", stats.RSquared)

	for i := 0; i < *unknowns; i++ {
		res := e.ProbeUnknown()
		fmt.Printf("Unknown %d: true = %.4f mM, measured A = %.4f, estimate = %.4f mM\n",
			i+1, res.TrueConcentrationMilliMolar, res.Reading.Absorbance, res.EstimatedMilliMolar)
	}
	e.ClearProbes()

	if *csvPath != "" {
		if err := results.WriteCSV(e.CalibrationSet(), *csvPath, false); err != nil {
			return err
		}
		fmt.Printf("CSV written to %s\n", *csvPath)
	}
	if *reportPath != "" {
		if err := results.WriteJSON(results.NewBuilder().FromEngine(e).Build(), *reportPath); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", *reportPath)
	}
	return nil
}
