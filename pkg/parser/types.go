// Package parser provides log file reading and error line parsing.
package parser

import "fmt"

// Record is the parsed result of one error line.
type Record struct {
	// Hour is the two-digit hour of day, "00" through "23".
	Hour string

	// Minute is the two-digit minute of hour, "00" through "59".
	Minute string

	// Type is the trimmed error type text between the ERROR marker and " -".
	Type string
}

// Parse failure reasons.
const (
	ReasonMalformed  = "malformed"
	ReasonOutOfRange = "time out of range"
	ReasonEmptyType  = "empty type"
)

// ParseError reports a line that does not yield a Record.
// It is an expected outcome for non-conforming lines.
type ParseError struct {
	Reason string
	Input  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s error line: %q", e.Reason, e.Input)
}

// FileReadError reports a file that could not be opened or read.
// A file that fails this way contributes no records.
type FileReadError struct {
	Path string
	Op   string // open, read
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// DiscoveryError reports a source directory that could not be enumerated.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering log files in %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
