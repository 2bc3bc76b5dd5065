package parser

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func splitAll(t *testing.T, input string, max int, oneByte bool) ([]string, int) {
	t.Helper()
	r := strings.NewReader(input)
	splitter := &lineSplitter{max: max}
	var scanner *bufio.Scanner
	if oneByte {
		scanner = bufio.NewScanner(iotest.OneByteReader(r))
	} else {
		scanner = bufio.NewScanner(r)
	}
	scanner.Buffer(make([]byte, 0, 4), max)
	scanner.Split(splitter.split)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner.Err() = %v", err)
	}
	return lines, splitter.oversize
}

func TestLineSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		oversize int
	}{
		{"lf", "a\nb\n", []string{"a", "b"}, 0},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}, 0},
		{"lone cr", "a\rb\rc", []string{"a", "b", "c"}, 0},
		{"mixed", "a\rb\r\nc\nd", []string{"a", "b", "c", "d"}, 0},
		{"empty lines", "\n\r\n\r", []string{"", "", ""}, 0},
		{"no trailing newline", "abc", []string{"abc"}, 0},
		{"empty input", "", nil, 0},
		{"long line dropped", "ok\n" + strings.Repeat("x", 40) + "\nfine\n", []string{"ok", "fine"}, 1},
		{"long line at eof", "ok\n" + strings.Repeat("x", 40), []string{"ok"}, 1},
		{"two long lines", strings.Repeat("y", 33) + "\r" + strings.Repeat("z", 50) + "\nend", []string{"end"}, 2},
	}

	for _, tt := range tests {
		for _, oneByte := range []bool{false, true} {
			t.Run(tt.name, func(t *testing.T) {
				got, oversize := splitAll(t, tt.input, 16, oneByte)
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("lines = %q, want %q", got, tt.want)
				}
				if oversize != tt.oversize {
					t.Errorf("oversize = %d, want %d", oversize, tt.oversize)
				}
			})
		}
	}
}
