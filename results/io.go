package results

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/taggatron/Colorimetrybetalain/calibrate"
)

// WriteJSON writes a report to a JSON file.
func WriteJSON(r *Report, filename string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ReadJSON reads a report from a JSON file.
func ReadJSON(filename string) (*Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// ToJSON converts a report to a JSON string.
func ToJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteCSV writes the calibration set to a CSV file with the standard
// `concentration_mM,absorbance_A` header. Temporary probe points are
// excluded unless includeTemporary is set.
func WriteCSV(set calibrate.Set, filename string, includeTemporary bool) error {
	if err := os.WriteFile(filename, []byte(set.CSV(includeTemporary)+"\n"), 0644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
