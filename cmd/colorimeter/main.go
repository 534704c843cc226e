package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "scan":
		if err := scan(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "measure":
		if err := measureCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "calibrate":
		if err := calibrateCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "bleach":
		if err := bleachCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "estimate":
		if err := estimate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "profile":
		if err := profileCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("colorimeter version " + version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`colorimeter - single-beam colorimeter simulator

Usage:
  colorimeter <command> [options]

Commands:
  scan       Sample the spectral curves over the wavelength range
  measure    Simulate instrument readings under given conditions
  calibrate  Run the auto-calibration sequence and fit the line
  bleach     Simulate a photobleaching run and export the time series
  estimate   Estimate an unknown concentration from a calibration CSV
  profile    Write the default instrument profile JSON
  serve      Serve the session API over HTTP
  version    Print version

Run 'colorimeter <command> -h' for command options.`)
}

// newLogger builds the CLI console logger at the given level.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
