// Package output provides the error report and run summaries.
package output

import (
	"time"

	"github.com/ccollicutt/errprofile/pkg/aggregate"
	"github.com/ccollicutt/errprofile/pkg/analyzer"
)

// Report is the complete result of a run, ready for formatting.
type Report struct {
	// Counts are the three frequency tables.
	Counts aggregate.Snapshot `json:"counts"`

	// Summary describes per-file and per-line outcomes.
	Summary analyzer.Summary `json:"summary"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Metadata provides context about the run.
type Metadata struct {
	SourceDir      string        `json:"source_dir"`
	OutputFile     string        `json:"output_file,omitempty"`
	Encoding       string        `json:"encoding"`
	Workers        int           `json:"workers"`
	AnalyzedAt     time.Time     `json:"analyzed_at"`
	Duration       time.Duration `json:"duration"`
	DiscoveryError string        `json:"discovery_error,omitempty"`
}

// NewReport creates a Report from an analysis result.
func NewReport(result *analyzer.Result, outputFile string) *Report {
	report := &Report{
		Counts:  result.Snapshot,
		Summary: result.Summary,
		Metadata: Metadata{
			SourceDir:  result.Metadata.SourceDir,
			OutputFile: outputFile,
			Encoding:   result.Metadata.Encoding,
			Workers:    result.Metadata.Workers,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.Duration(),
		},
	}

	if result.DiscoveryErr != nil {
		report.Metadata.DiscoveryError = result.DiscoveryErr.Error()
	}

	return report
}

// HasErrors returns true if at least one error record was counted.
func (r *Report) HasErrors() bool {
	return r.Counts.Total() > 0
}

// HasFailures returns true if a file or line could not be processed,
// or the source directory could not be read.
func (r *Report) HasFailures() bool {
	return r.Summary.HasFailures() || r.Metadata.DiscoveryError != ""
}
