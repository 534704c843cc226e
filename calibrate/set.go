// Package calibrate builds calibration curves from recorded colorimeter
// measurements: an ordered set of (concentration, absorbance) points, an
// ordinary least-squares fit with goodness of fit, and inversion of that
// fit to estimate unknown concentrations.
package calibrate

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a single recorded measurement. Temporary points (unknown-sample
// probes) are shown transiently but excluded from the regression and from
// CSV export.
type Point struct {
	ConcentrationMilliMolar float64 `json:"concentrationMilliMolar"`
	Absorbance              float64 `json:"absorbance"`
	Temporary               bool    `json:"temporary,omitempty"`
}

// Set is an ordered sequence of calibration points. Operations return a new
// set; the receiver is never mutated, so callers can thread sets through
// pure pipelines.
type Set struct {
	points []Point
}

// NewSet returns an empty calibration set.
func NewSet() Set {
	return Set{}
}

// Add appends a persistent measurement and returns the extended set.
func (s Set) Add(concentrationMilliMolar, absorbance float64) Set {
	return s.add(Point{ConcentrationMilliMolar: concentrationMilliMolar, Absorbance: absorbance})
}

// AddTemporary appends a transient probe point excluded from the fit.
func (s Set) AddTemporary(concentrationMilliMolar, absorbance float64) Set {
	return s.add(Point{ConcentrationMilliMolar: concentrationMilliMolar, Absorbance: absorbance, Temporary: true})
}

func (s Set) add(p Point) Set {
	points := make([]Point, len(s.points), len(s.points)+1)
	copy(points, s.points)
	return Set{points: append(points, p)}
}

// DropTemporary returns the set with all temporary points stripped,
// preserving the order of the remaining points.
func (s Set) DropTemporary() Set {
	points := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if !p.Temporary {
			points = append(points, p)
		}
	}
	return Set{points: points}
}

// Clear returns an empty set.
func (s Set) Clear() Set {
	return Set{}
}

// Len reports the total number of points, temporary included.
func (s Set) Len() int {
	return len(s.points)
}

// Points returns all points in insertion order.
func (s Set) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Persistent returns the non-temporary points in insertion order. These are
// the points the regression runs over.
func (s Set) Persistent() []Point {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if !p.Temporary {
			out = append(out, p)
		}
	}
	return out
}

// CSVHeader is the first line of an exported calibration CSV.
const CSVHeader = "concentration_mM,absorbance_A"

// CSV renders the calibration set as comma-separated text, one row per
// point. Temporary probe points are included only when includeTemporary is
// set. Fields are numeric, so no quoting is needed.
func (s Set) CSV(includeTemporary bool) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	for _, p := range s.points {
		if p.Temporary && !includeTemporary {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%g,%g", p.ConcentrationMilliMolar, p.Absorbance))
	}
	return b.String()
}

// ParseCSV reads calibration points back from exported CSV text. All parsed
// points are persistent; the export does not carry the temporary flag.
func ParseCSV(data string) (Set, error) {
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != CSVHeader {
		return Set{}, fmt.Errorf("missing CSV header %q", CSVHeader)
	}
	s := NewSet()
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return Set{}, fmt.Errorf("line %d: expected 2 fields, got %d", i+2, len(fields))
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return Set{}, fmt.Errorf("line %d: parse concentration: %w", i+2, err)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return Set{}, fmt.Errorf("line %d: parse absorbance: %w", i+2, err)
		}
		s = s.Add(c, a)
	}
	return s, nil
}
