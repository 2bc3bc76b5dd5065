package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/errprofile/pkg/aggregate"
	"github.com/ccollicutt/errprofile/pkg/parser"
)

// Analyzer orchestrates discovery, concurrent scanning and aggregation.
type Analyzer struct {
	workers     int
	encoding    string
	marker      string
	linePattern *regexp.Regexp
	opener      parser.OpenFunc
	logger      *zap.Logger

	scanner *parser.FileScanner
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithWorkers limits the number of concurrent scan tasks. n <= 0 removes the limit.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithEncoding sets the encoding label log files are decoded with.
func WithEncoding(name string) AnalyzerOption {
	return func(a *Analyzer) {
		if name != "" {
			a.encoding = name
		}
	}
}

// WithErrorMarker sets the substring that selects error lines.
func WithErrorMarker(marker string) AnalyzerOption {
	return func(a *Analyzer) {
		if marker != "" {
			a.marker = marker
		}
	}
}

// WithLinePattern replaces the default error line pattern.
func WithLinePattern(re *regexp.Regexp) AnalyzerOption {
	return func(a *Analyzer) {
		a.linePattern = re
	}
}

// WithOpener replaces how log files are opened.
func WithOpener(open parser.OpenFunc) AnalyzerOption {
	return func(a *Analyzer) {
		a.opener = open
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		workers:  DefaultWorkers(),
		encoding: parser.DefaultEncoding,
		marker:   parser.DefaultErrorMarker,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	enc, err := parser.LookupEncoding(a.encoding)
	if err != nil {
		return nil, err
	}

	lineParser := parser.DefaultLineParser()
	if a.linePattern != nil {
		lineParser, err = parser.NewLineParser(a.linePattern)
		if err != nil {
			return nil, err
		}
	}

	a.scanner, err = parser.NewFileScanner(
		parser.WithEncoding(enc),
		parser.WithErrorMarker(a.marker),
		parser.WithLineParser(lineParser),
		parser.WithOpener(a.opener),
		parser.WithScannerLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating file scanner: %w", err)
	}

	return a, nil
}

// Run scans every regular file under root and returns the aggregated counts.
//
// A root that cannot be enumerated is not an error: it is reported through
// Result.DiscoveryErr and the run continues with no files. The only error
// returned is ctx's, when it is already done before the scan starts.
func (a *Analyzer) Run(ctx context.Context, root string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Metadata: Metadata{
			SourceDir: root,
			Encoding:  a.encoding,
			Workers:   a.workers,
			StartTime: time.Now(),
		},
	}

	files, err := parser.Discover(root, func(path string, err error) {
		a.logger.Warn("skipping unreadable directory entry",
			zap.String("path", path),
			zap.Error(err))
	})
	if err != nil {
		a.logger.Warn("source directory could not be read, report will be empty",
			zap.String("dir", root),
			zap.Error(err))
		result.DiscoveryErr = err
		files = nil
	}

	a.logger.Info("scanning log files",
		zap.String("dir", root),
		zap.Int("files", len(files)),
		zap.String("encoding", a.encoding),
		zap.Int("workers", a.workers))

	agg := aggregate.New()
	coord := NewCoordinator(a.scanner, agg, a.workers, a.logger)

	result.Summary = coord.Run(files)
	result.Snapshot = agg.Snapshot()
	result.Metadata.EndTime = time.Now()

	return result, nil
}
