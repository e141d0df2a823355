package analytics

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is a persisted statistics snapshot.
type Report struct {
	// UserID is the owner of the trades the report was computed from.
	UserID string `yaml:"user_id" json:"userId"`
	// GeneratedAt is when the statistics were computed.
	GeneratedAt time.Time `yaml:"generated_at" json:"generatedAt"`
	// From and To are the inclusive date bounds applied, empty when unbounded.
	From string `yaml:"from,omitempty" json:"from,omitempty"`
	To   string `yaml:"to,omitempty" json:"to,omitempty"`
	// Statistics computed over the filtered trades.
	Statistics *Statistics `yaml:"statistics" json:"statistics"`
}

// WriteReport marshals the report to YAML and writes it to path.
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write statistics report to file: %w", err)
	}

	return nil
}

// ReadReport loads a report previously written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics report: %w", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics report: %w", err)
	}
	return &report, nil
}
