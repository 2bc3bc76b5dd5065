package parser

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type recordingSink struct {
	mu      sync.Mutex
	records []Record
}

func (s *recordingSink) Add(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func writeLog(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileScanner_Scan_Windows1251(t *testing.T) {
	content := "12.05.2020 14:07:33 [main] ERROR ОшибкаДиска - нет места\n" +
		"12.05.2020 14:07:34 [main] INFO всё хорошо\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(content)
	if err != nil {
		t.Fatal(err)
	}
	path := writeLog(t, t.TempDir(), "app.log", []byte(encoded))

	s, err := NewFileScanner()
	if err != nil {
		t.Fatalf("NewFileScanner() error = %v", err)
	}

	sink := &recordingSink{}
	res := s.Scan(path, sink)

	if res.Err != nil {
		t.Fatalf("Scan() Err = %v", res.Err)
	}
	if res.Records != 1 || len(sink.records) != 1 {
		t.Fatalf("Records = %d, sink got %d, want 1", res.Records, len(sink.records))
	}
	want := Record{Hour: "14", Minute: "07", Type: "ОшибкаДиска"}
	if sink.records[0] != want {
		t.Errorf("record = %+v, want %+v", sink.records[0], want)
	}
}

func TestFileScanner_Scan_UTF8(t *testing.T) {
	content := "10:00:00 a ERROR Timeout - x\r\n" +
		"10:01:00 a WARN slow\r\n" +
		"10:02:00 a ERROR Timeout - y\r\n"
	path := writeLog(t, t.TempDir(), "app.log", []byte(content))

	s, err := NewFileScanner(WithEncoding(unicode.UTF8))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan(path, sink)

	if res.Err != nil {
		t.Fatalf("Scan() Err = %v", res.Err)
	}
	if res.ErrorLines != 2 {
		t.Errorf("ErrorLines = %d, want 2", res.ErrorLines)
	}
	if res.Records != 2 {
		t.Errorf("Records = %d, want 2", res.Records)
	}
	for _, rec := range sink.records {
		if rec.Type != "Timeout" {
			t.Errorf("Type = %q, want Timeout", rec.Type)
		}
	}
}

func TestFileScanner_Scan_MalformedLinesContinue(t *testing.T) {
	content := strings.Join([]string{
		"ERROR at startup with no timestamp",
		"10:00:00 a ERROR DiskFull - x",
		"10:00:01 a ERROR unterminated",
		"10:00:02 a ERROR DiskFull - y",
		"plain line",
	}, "\n")
	path := writeLog(t, t.TempDir(), "app.log", []byte(content))

	core, logs := observer.New(zapcore.DebugLevel)
	s, err := NewFileScanner(WithEncoding(unicode.UTF8), WithScannerLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan(path, sink)

	if res.Err != nil {
		t.Fatalf("Scan() Err = %v", res.Err)
	}
	if res.ErrorLines != 4 {
		t.Errorf("ErrorLines = %d, want 4", res.ErrorLines)
	}
	if res.Malformed != 2 {
		t.Errorf("Malformed = %d, want 2", res.Malformed)
	}
	if res.Records != 2 || len(sink.records) != 2 {
		t.Errorf("Records = %d, sink got %d, want 2", res.Records, len(sink.records))
	}
	if n := logs.FilterMessage("unparsable error line").Len(); n != 2 {
		t.Errorf("logged %d unparsable lines, want 2", n)
	}
}

func TestFileScanner_Scan_CustomMarker(t *testing.T) {
	content := "10:00:00 a FATAL ERROR Crash - x\n10:00:01 a ERROR Other - y\n"
	path := writeLog(t, t.TempDir(), "app.log", []byte(content))

	s, err := NewFileScanner(WithEncoding(unicode.UTF8), WithErrorMarker("FATAL"))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan(path, sink)

	if res.ErrorLines != 1 || res.Records != 1 {
		t.Fatalf("ErrorLines = %d, Records = %d, want 1 and 1", res.ErrorLines, res.Records)
	}
	if sink.records[0].Type != "Crash" {
		t.Errorf("Type = %q, want Crash", sink.records[0].Type)
	}
}

func TestFileScanner_Scan_MissingFile(t *testing.T) {
	s, err := NewFileScanner()
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan(filepath.Join(t.TempDir(), "gone.log"), sink)

	var rerr *FileReadError
	if !errors.As(res.Err, &rerr) {
		t.Fatalf("Err = %v, want *FileReadError", res.Err)
	}
	if rerr.Op != "open" {
		t.Errorf("Op = %q, want open", rerr.Op)
	}
	if !errors.Is(res.Err, fs.ErrNotExist) {
		t.Errorf("Err = %v, want to wrap fs.ErrNotExist", res.Err)
	}
	if len(sink.records) != 0 {
		t.Errorf("sink got %d records, want 0", len(sink.records))
	}
}

func TestFileScanner_Scan_PermissionDenied(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s, err := NewFileScanner(
		WithOpener(func(path string) (io.ReadCloser, error) {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
		}),
		WithScannerLogger(zap.New(core)),
	)
	if err != nil {
		t.Fatal(err)
	}

	res := s.Scan("locked.log", &recordingSink{})

	if !errors.Is(res.Err, fs.ErrPermission) {
		t.Errorf("Err = %v, want fs.ErrPermission", res.Err)
	}
	if res.Records != 0 {
		t.Errorf("Records = %d, want 0", res.Records)
	}
	if logs.FilterMessage("skipping unreadable log file").Len() != 1 {
		t.Error("expected one warning for the unreadable file")
	}
}

func TestFileScanner_Scan_ReadErrorContributesNothing(t *testing.T) {
	readErr := errors.New("device went away")
	s, err := NewFileScanner(
		WithEncoding(unicode.UTF8),
		WithOpener(func(string) (io.ReadCloser, error) {
			good := strings.NewReader("10:00:00 a ERROR DiskFull - x\n10:00:01 a ERROR DiskFull - y\n")
			return io.NopCloser(io.MultiReader(good, iotest.ErrReader(readErr))), nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan("flaky.log", sink)

	if !errors.Is(res.Err, readErr) {
		t.Fatalf("Err = %v, want %v", res.Err, readErr)
	}
	if len(sink.records) != 0 || res.Records != 0 {
		t.Errorf("sink got %d records (Records=%d), want none from a failed file", len(sink.records), res.Records)
	}
}

func TestFileScanner_Scan_LineTooLongIsSkipped(t *testing.T) {
	content := "10:00:00 a ERROR Before - x\n" +
		"10:00:01 a INFO " + strings.Repeat("x", 2*maxLineSize) + "\n" +
		"10:00:02 a ERROR After - y\n"
	path := writeLog(t, t.TempDir(), "huge.log", []byte(content))

	core, logs := observer.New(zapcore.WarnLevel)
	s, err := NewFileScanner(WithEncoding(unicode.UTF8), WithScannerLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan(path, sink)

	if res.Err != nil {
		t.Fatalf("Scan() Err = %v, want nil", res.Err)
	}
	if res.Records != 2 || len(sink.records) != 2 {
		t.Fatalf("Records = %d (sink %d), want 2", res.Records, len(sink.records))
	}
	if sink.records[0].Type != "Before" || sink.records[1].Type != "After" {
		t.Errorf("records = %+v, want Before then After", sink.records)
	}
	if res.Oversize != 1 {
		t.Errorf("Oversize = %d, want 1", res.Oversize)
	}
	if logs.FilterMessage("skipped over-long lines").Len() != 1 {
		t.Error("expected one warning for the over-long line")
	}
}

func TestFileScanner_Scan_CarriageReturnLineEndings(t *testing.T) {
	content := "10:00:00 a ERROR One - x\r10:01:00 a ERROR Two - y\r10:02:00 a ERROR Three - z\r"
	path := writeLog(t, t.TempDir(), "mac.log", []byte(content))

	s, err := NewFileScanner(WithEncoding(unicode.UTF8))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	res := s.Scan(path, sink)

	if res.Err != nil {
		t.Fatalf("Scan() Err = %v", res.Err)
	}
	if res.ErrorLines != 3 || res.Records != 3 {
		t.Errorf("ErrorLines = %d, Records = %d, want 3 and 3", res.ErrorLines, res.Records)
	}
}

func TestFileScanner_Scan_EmptyFile(t *testing.T) {
	path := writeLog(t, t.TempDir(), "empty.log", nil)

	s, err := NewFileScanner()
	if err != nil {
		t.Fatal(err)
	}

	res := s.Scan(path, &recordingSink{})
	if res.Err != nil || res.Records != 0 || res.ErrorLines != 0 {
		t.Errorf("Scan() = %+v, want empty success", res)
	}
}
