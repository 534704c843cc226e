package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/taggatron/Colorimetrybetalain/bleach"
)

func bleachCmd(args []string) error {
	fs := flag.NewFlagSet("bleach", flag.ExitOnError)
	profilePath := fs.String("profile", "", "Instrument profile JSON (default: built-in)")
	c0 := fs.Float64("c0", 1.0, "Initial concentration in mM")
	rate := fs.Float64("rate", 0.1, "Decay rate constant (1/min)")
	minutes := fs.Float64("minutes", 10, "Total simulated time in minutes")
	ticks := fs.Int("ticks", 100, "Number of time steps")
	output := fs.String("output", "", "Output file for the time series (default stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: colorimeter bleach [options]

Simulate first-order photobleaching c(t) = c0·exp(-k·t) over synthetic
time and export the concentration-vs-time series.

Examples:
  colorimeter bleach --c0 1.0 --rate 0.1 --minutes 10
  colorimeter bleach --ticks 600 --output series.json

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticks <= 0 {
		return fmt.Errorf("--ticks must be positive")
	}

	p, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}

	run := bleach.Start(*c0, *rate)
	series := bleach.NewSeries(p.SeriesCapacity)
	series.Append(bleach.TimeSeriesPoint{ElapsedMinutes: 0, ConcentrationMilliMolar: run.StartConcentration})

	dt := *minutes / float64(*ticks)
	for i := 0; i < *ticks; i++ {
		c := run.Advance(dt)
		series.Append(bleach.TimeSeriesPoint{ElapsedMinutes: run.ElapsedMinutes(), ConcentrationMilliMolar: c})
	}

	data, err := json.MarshalIndent(series.Points(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	if *output == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write series: %w", err)
		}
		fmt.Printf("Series written to %s\n", *output)
	}
	fmt.Fprintf(os.Stderr, "Final concentration after %g min: %.6f mM\n", *minutes, run.Concentration())
	return nil
}
