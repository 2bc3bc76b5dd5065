package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/errprofile/pkg/aggregate"
	"github.com/ccollicutt/errprofile/pkg/analyzer"
)

// Document is the JSON form of a report. Lines hold the report file lines in
// file order; Counts hold the tables they were built from.
type Document struct {
	Lines    []string            `json:"lines,omitempty"`
	Counts   *aggregate.Snapshot `json:"counts,omitempty"`
	Summary  analyzer.Summary    `json:"summary"`
	Metadata Metadata            `json:"metadata"`
}

// NewDocument builds the JSON form of report. A brief document carries only
// the summary and metadata.
func NewDocument(report *Report, brief bool) *Document {
	doc := &Document{
		Summary:  report.Summary,
		Metadata: report.Metadata,
	}
	if !brief {
		counts := report.Counts
		doc.Counts = &counts
		doc.Lines = Lines(report.Counts)
	}
	return doc
}

// JSONFormatter renders a report as an indented JSON Document.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes the report document. Quiet drops the lines and counts.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(report, f.opts.Quiet))
}
