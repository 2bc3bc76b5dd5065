package analyzer

import (
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/errprofile/pkg/parser"
)

// FileScanner scans one file into a sink. *parser.FileScanner implements it.
type FileScanner interface {
	Scan(path string, sink parser.Sink) parser.FileResult
}

// DefaultWorkers is the default number of concurrent scan tasks.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0) * 4
}

// Coordinator runs one scan task per file on a bounded worker group and
// waits for all of them. A worker limit <= 0 means one goroutine per file.
type Coordinator struct {
	scanner FileScanner
	sink    parser.Sink
	workers int
	logger  *zap.Logger
}

// NewCoordinator creates a coordinator feeding sink through scanner.
func NewCoordinator(scanner FileScanner, sink parser.Sink, workers int, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		scanner: scanner,
		sink:    sink,
		workers: workers,
		logger:  logger,
	}
}

// Run scans every file and blocks until all scan tasks have finished.
// Per-file failures are absorbed into the returned Summary; Run never fails,
// even when every file fails. Launched tasks are not cancelled.
func (c *Coordinator) Run(files []string) Summary {
	summary := Summary{FilesDiscovered: len(files)}

	var (
		mu      sync.Mutex
		results = make([]parser.FileResult, 0, len(files))
	)

	var g errgroup.Group
	if c.workers > 0 {
		g.SetLimit(c.workers)
	}

	for _, path := range files {
		path := path
		g.Go(func() error {
			res := c.scanner.Scan(path, c.sink)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	for _, res := range results {
		summary.ErrorLines += res.ErrorLines
		summary.Records += res.Records
		summary.Malformed += res.Malformed
		summary.Oversize += res.Oversize
		if res.Err != nil {
			summary.FilesFailed++
			summary.Failures = append(summary.Failures, FileFailure{
				Path:  res.Path,
				Error: res.Err.Error(),
			})
			continue
		}
		summary.FilesScanned++
	}

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})

	c.logger.Debug("scan finished",
		zap.Int("files", summary.FilesDiscovered),
		zap.Int("failed", summary.FilesFailed),
		zap.Int("records", summary.Records),
		zap.Int("malformed", summary.Malformed),
		zap.Int("oversize", summary.Oversize))

	return summary
}
