// Package analyzer discovers log files, scans them concurrently and
// aggregates their error records.
package analyzer

import (
	"time"

	"github.com/ccollicutt/errprofile/pkg/aggregate"
)

// Summary describes how a scan went. It is a side channel for operators and
// tests; none of it is written into the report.
type Summary struct {
	// FilesDiscovered is the number of files handed to the coordinator.
	FilesDiscovered int `json:"files_discovered"`

	// FilesScanned is the number of files read to the end.
	FilesScanned int `json:"files_scanned"`

	// FilesFailed is the number of files that could not be read.
	FilesFailed int `json:"files_failed"`

	// ErrorLines is the number of lines containing the error marker.
	ErrorLines int `json:"error_lines"`

	// Records is the number of records added to the aggregator.
	Records int `json:"records"`

	// Malformed is the number of error lines that did not parse.
	Malformed int `json:"malformed"`

	// Oversize is the number of lines dropped for exceeding the line size limit.
	Oversize int `json:"oversize"`

	// Failures lists unreadable files, sorted by path.
	Failures []FileFailure `json:"failures,omitempty"`
}

// HasFailures returns true if any file or line could not be processed.
func (s *Summary) HasFailures() bool {
	return s.FilesFailed > 0 || s.Malformed > 0 || s.Oversize > 0
}

// FileFailure records a file that contributed nothing because it could not be read.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result is the complete output of one analysis run.
type Result struct {
	// Snapshot holds the final frequency tables.
	Snapshot aggregate.Snapshot

	// Summary describes per-file and per-line outcomes.
	Summary Summary

	// Metadata provides context about the run.
	Metadata Metadata

	// DiscoveryErr is set when the source directory could not be enumerated.
	// The run still completes with an empty file list.
	DiscoveryErr error
}

// Metadata provides context about an analysis run.
type Metadata struct {
	SourceDir string
	Encoding  string
	Workers   int
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the run took.
func (m Metadata) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}
