package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/taggatron/Colorimetrybetalain/profile"
)

// loadProfile reads a profile file, or returns the default profile when no
// path is given.
func loadProfile(path string) (profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}

func profileCmd(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	output := fs.String("output", "", "Output file for the profile (default stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: colorimeter profile [options]

Write the default instrument profile as JSON. Edit the result and pass it
to other commands with --profile to change spectral parameters, noise,
ranges, timer intervals, and history capacity.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := profile.Default().ToJSON()
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if *output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	fmt.Printf("Profile written to %s\n", *output)
	return nil
}
