package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DefaultErrorMarker is the substring that makes a line an error line.
const DefaultErrorMarker = "ERROR"

// maxLineSize bounds a single log line. Longer lines are skipped.
const maxLineSize = 1024 * 1024

// Sink receives records parsed from a file. Implementations must be safe for
// concurrent use; one FileScanner may run on many goroutines.
type Sink interface {
	Add(rec Record)
}

// OpenFunc opens a log file for reading.
type OpenFunc func(path string) (io.ReadCloser, error)

// FileResult is the outcome of scanning one file.
type FileResult struct {
	// Path is the scanned file.
	Path string

	// ErrorLines is the number of lines containing the error marker.
	ErrorLines int

	// Records is the number of records committed to the sink.
	Records int

	// Malformed is the number of error lines that failed to parse.
	Malformed int

	// Oversize is the number of lines skipped for reaching maxLineSize.
	Oversize int

	// Err is a *FileReadError when the file could not be read; Records is 0 then.
	Err error
}

// FileScanner extracts error records from single log files.
type FileScanner struct {
	encoding encoding.Encoding
	marker   string
	parser   *LineParser
	open     OpenFunc
	logger   *zap.Logger
}

// ScannerOption configures a FileScanner.
type ScannerOption func(*FileScanner)

// WithEncoding sets the text encoding files are decoded with.
func WithEncoding(enc encoding.Encoding) ScannerOption {
	return func(s *FileScanner) {
		if enc != nil {
			s.encoding = enc
		}
	}
}

// WithErrorMarker sets the substring that selects candidate lines.
func WithErrorMarker(marker string) ScannerOption {
	return func(s *FileScanner) {
		if marker != "" {
			s.marker = marker
		}
	}
}

// WithLineParser sets the parser applied to candidate lines.
func WithLineParser(p *LineParser) ScannerOption {
	return func(s *FileScanner) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithOpener replaces os.Open, mainly for tests.
func WithOpener(open OpenFunc) ScannerOption {
	return func(s *FileScanner) {
		if open != nil {
			s.open = open
		}
	}
}

// WithScannerLogger sets the logger for per-line and per-file failures.
func WithScannerLogger(logger *zap.Logger) ScannerOption {
	return func(s *FileScanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileScanner creates a scanner. Without options it decodes windows-1251,
// selects lines containing "ERROR" and parses them with DefaultLinePattern.
func NewFileScanner(opts ...ScannerOption) (*FileScanner, error) {
	s := &FileScanner{
		marker: DefaultErrorMarker,
		parser: DefaultLineParser(),
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path) // #nosec G304 -- paths come from directory discovery
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.encoding == nil {
		enc, err := LookupEncoding(DefaultEncoding)
		if err != nil {
			return nil, err
		}
		s.encoding = enc
	}

	return s, nil
}

// Scan reads path, parses its error lines and forwards the records to sink.
// Records are only forwarded once the whole file has been read, so a file
// that fails part way contributes nothing. Scan never panics on bad input and
// never returns the failure to its caller other than through FileResult.Err.
func (s *FileScanner) Scan(path string, sink Sink) FileResult {
	result := FileResult{Path: path}

	records, err := s.readRecords(path, &result)
	if err != nil {
		result.Err = err
		result.Malformed = 0
		result.ErrorLines = 0
		result.Oversize = 0
		s.logger.Warn("skipping unreadable log file",
			zap.String("path", path),
			zap.Error(err))
		return result
	}

	if result.Oversize > 0 {
		s.logger.Warn("skipped over-long lines",
			zap.String("path", path),
			zap.Int("lines", result.Oversize),
			zap.Int("limit", maxLineSize))
	}

	for _, rec := range records {
		sink.Add(rec)
	}
	result.Records = len(records)

	return result
}

func (s *FileScanner) readRecords(path string, result *FileResult) ([]Record, error) {
	f, err := s.open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	reader := transform.NewReader(f, s.encoding.NewDecoder())
	splitter := &lineSplitter{max: maxLineSize}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(splitter.split)

	var records []Record
	tokens := 0
	for scanner.Scan() {
		tokens++
		lineNum := tokens + splitter.oversize
		line := scanner.Text()
		if !strings.Contains(line, s.marker) {
			continue
		}
		result.ErrorLines++

		rec, err := s.parser.Parse(line)
		if err != nil {
			result.Malformed++
			s.logger.Debug("unparsable error line",
				zap.String("path", path),
				zap.Int("line", lineNum),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	result.Oversize = splitter.oversize
	if err := scanner.Err(); err != nil {
		return nil, &FileReadError{Path: path, Op: "read", Err: err}
	}

	return records, nil
}
