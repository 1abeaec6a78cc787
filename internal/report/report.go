// Package report writes the run summary emitted after a generation run:
// what was processed, what changed, and the diagnostic totals a CI job
// keys its exit status on.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gddoc/internal/diag"
)

// Report is one generation run's summary.
type Report struct {
	RunID       string    `yaml:"runId,omitempty"`
	Project     string    `yaml:"project"`
	GeneratedAt time.Time `yaml:"generatedAt"`

	Classes int `yaml:"classes"`
	Scenes  int `yaml:"scenes"`
	Pages   int `yaml:"pages"`

	FilesTotal   int `yaml:"filesTotal"`
	FilesChanged int `yaml:"filesChanged"`

	Diagnostics diag.Counts `yaml:"diagnostics"`
}

// Succeeded reports whether the run finished without errors. Warnings
// and dropped endpoints do not fail a run.
func (r *Report) Succeeded() bool {
	return r.Diagnostics.Errors == 0
}

// Write marshals the report to a YAML file, creating parent directories
// as needed.
func Write(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Read loads a previously written report.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
