package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/taggatron/Colorimetrybetalain/calibrate"
	"github.com/taggatron/Colorimetrybetalain/results"
)

func estimate(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	csvPath := fs.String("csv", "", "Calibration CSV to fit (required)")
	absorbance := fs.Float64("absorbance", -1, "Measured absorbance of the unknown (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: colorimeter estimate --csv calibration.csv --absorbance 1.25

Fit the calibration CSV and invert the line to estimate the concentration
that produced the measured absorbance.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		fs.Usage()
		return fmt.Errorf("--csv required")
	}
	if *absorbance < 0 {
		fs.Usage()
		return fmt.Errorf("--absorbance must be a non-negative measured absorbance")
	}

	data, err := os.ReadFile(*csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	set, err := calibrate.ParseCSV(string(data))
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	fit := calibrate.Fit(set)
	stats := results.FormatFit(fit)
	fmt.Printf("Fit over %d points: slope = %s, intercept = %s, R² = %s\n",
		fit.N, stats.Slope, stats.Intercept, stats.RSquared)

	if !fit.Defined {
		return fmt.Errorf("calibration is degenerate (need ≥2 points with spread); cannot estimate")
	}
	est := calibrate.EstimateConcentration(*absorbance, fit)
	fmt.Printf("Estimated concentration for A = %g: %.4f mM\n", *absorbance, est)
	return nil
}
