package output

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// ReportWriteError reports a report file that could not be written.
// It is fatal to a run: without the report the run has no output.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("writing report %s: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error { return e.Err }

// WriteFile writes the report lines to path, replacing any existing file.
// A report with no counts produces an empty file.
func WriteFile(ctx context.Context, report *Report, path string) error {
	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}

	w := bufio.NewWriter(f)
	if err := NewTextFormatter(FormatOptions{}).Format(ctx, report, w); err != nil {
		_ = f.Close()
		return &ReportWriteError{Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return &ReportWriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}

	return nil
}
