package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ccollicutt/errprofile/pkg/aggregate"
)

// Report line categories, in output order.
const (
	CategoryHour   = "Hour"
	CategoryMinute = "Minute"
	CategoryType   = "Type"
)

// Lines renders the counts as report lines: all Hour lines, then Minute, then
// Type, each group ordered by key in ascending byte order. Hour and minute
// keys are zero padded, so byte order is also numeric order for them.
func Lines(counts aggregate.Snapshot) []string {
	lines := make([]string, 0, len(counts.Hours)+len(counts.Minutes)+len(counts.Types))
	lines = appendCategory(lines, CategoryHour, counts.Hours)
	lines = appendCategory(lines, CategoryMinute, counts.Minutes)
	lines = appendCategory(lines, CategoryType, counts.Types)
	return lines
}

func appendCategory(lines []string, category string, table map[string]int64) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %s errors %d", category, k, table[k]))
	}
	return lines
}

// TextFormatter writes the report lines, one per line, with no header or footer.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report lines.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	for _, line := range Lines(report.Counts) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
