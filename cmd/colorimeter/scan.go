package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/taggatron/Colorimetrybetalain/results"
)

func scan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	profilePath := fs.String("profile", "", "Instrument profile JSON (default: built-in)")
	conc := fs.Float64("conc", 0.5, "Concentration in mM for the absorbance curve")
	output := fs.String("output", "", "Output file for the curves (default stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: colorimeter scan [options]

Sample the molar absorptivity and absorbance curves across the profile's
wavelength range.

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

	view := results.SpectrumView{
		Epsilon: p.Spectrum.EpsilonCurve(p.WavelengthMinNm, p.WavelengthMaxNm, p.WavelengthStep),
		Absorbance: p.Spectrum.AbsorbanceCurve(p.WavelengthMinNm, p.WavelengthMaxNm, p.WavelengthStep,
			*conc, p.PathLengthCm),
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal curves: %w", err)
	}
	if *output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write curves: %w", err)
	}
	fmt.Printf("Curves written to %s (%d samples)\n", *output, len(view.Epsilon))
	return nil
}
