package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultLinePattern matches an optional dd.mm.yyyy date, an HH:MM:SS time and
// the error type between " ERROR " and " -". Capture groups: hour, minute, type.
const DefaultLinePattern = `^.*(?:\d{2}\.\d{2}\.\d{4}\s)?(\d{2}):(\d{2}):\d{2}.+ ERROR ([^-]+) -`

var defaultLineRegexp = regexp.MustCompile(DefaultLinePattern)

// LineParser turns raw error lines into Records.
// It holds no mutable state and is safe for concurrent use.
type LineParser struct {
	pattern *regexp.Regexp
}

// NewLineParser creates a parser for the given pattern.
// A nil pattern selects DefaultLinePattern. The pattern must have at least
// three capture groups: hour, minute and type.
func NewLineParser(pattern *regexp.Regexp) (*LineParser, error) {
	if pattern == nil {
		pattern = defaultLineRegexp
	}
	if pattern.NumSubexp() < 3 {
		return nil, fmt.Errorf("line pattern has %d capture groups, need 3 (hour, minute, type)", pattern.NumSubexp())
	}
	return &LineParser{pattern: pattern}, nil
}

// DefaultLineParser returns a parser using DefaultLinePattern.
func DefaultLineParser() *LineParser {
	return &LineParser{pattern: defaultLineRegexp}
}

// Parse extracts hour, minute and type from line.
// Lines that do not match return a *ParseError; only the first match is used.
func (p *LineParser) Parse(line string) (Record, error) {
	matches := p.pattern.FindStringSubmatch(line)
	if matches == nil {
		return Record{}, &ParseError{Reason: ReasonMalformed, Input: line}
	}

	hour, minute := matches[1], matches[2]
	if !inRange(hour, 23) || !inRange(minute, 59) {
		return Record{}, &ParseError{Reason: ReasonOutOfRange, Input: line}
	}

	errType := strings.TrimSpace(matches[3])
	if errType == "" {
		return Record{}, &ParseError{Reason: ReasonEmptyType, Input: line}
	}

	return Record{Hour: hour, Minute: minute, Type: errType}, nil
}

// inRange reports whether s is a two-digit number between 0 and max.
func inRange(s string, max int) bool {
	if len(s) != 2 {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= max
}
