package output

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders the run summary as a terminal table.
type TableFormatter struct {
	opts FormatOptions
}

// NewTableFormatter creates a new table formatter with the given options.
func NewTableFormatter(opts FormatOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// Name returns the format name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Format renders the summary counters and, unless quiet, the unreadable files.
func (f *TableFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	s := report.Summary

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Files discovered", strconv.Itoa(s.FilesDiscovered)},
		{"Files scanned", strconv.Itoa(s.FilesScanned)},
		{"Files failed", strconv.Itoa(s.FilesFailed)},
		{"Error lines", strconv.Itoa(s.ErrorLines)},
		{"Records", strconv.Itoa(s.Records)},
		{"Malformed lines", strconv.Itoa(s.Malformed)},
		{"Over-long lines", strconv.Itoa(s.Oversize)},
		{"Distinct types", strconv.Itoa(len(report.Counts.Types))},
		{"Workers", describeWorkers(report.Metadata.Workers)},
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("building summary table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering summary table: %w", err)
	}

	if f.opts.Quiet || len(s.Failures) == 0 {
		return nil
	}

	failures := tablewriter.NewWriter(w)
	failures.Header("Unreadable file", "Error")
	for _, fail := range s.Failures {
		if err := failures.Append([]string{fail.Path, fail.Error}); err != nil {
			return fmt.Errorf("building failure table: %w", err)
		}
	}
	if err := failures.Render(); err != nil {
		return fmt.Errorf("rendering failure table: %w", err)
	}

	return nil
}

func describeWorkers(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}
