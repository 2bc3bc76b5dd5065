package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/errprofile/pkg/analyzer"
	"github.com/ccollicutt/errprofile/pkg/config"
	"github.com/ccollicutt/errprofile/pkg/logging"
	"github.com/ccollicutt/errprofile/pkg/output"
	"github.com/ccollicutt/errprofile/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Summary output modes.
const (
	SummaryAuto  = "auto"
	SummaryTable = "table"
	SummaryJSON  = "json"
	SummaryNone  = "none"
)

// ScanOptions holds command-line options for the scan command.
type ScanOptions struct {
	ConfigFile  string
	Encoding    string
	Workers     int
	ErrorMarker string
	Summary     string
	Quiet       bool
	Verbose     bool
	LogJSON     bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [source-dir] [report-file]",
		Short: "Count ERROR lines by hour, minute and type",
		Long: `Scan every file under a directory for ERROR lines and write a report of
error counts per hour of day, minute of hour and error type.

Error lines look like:
  12.05.2020 14:07:33 [worker-1] ERROR DiskFull - no space left on device

The report has one line per key, for example:
  Hour 14 errors 2
  Minute 07 errors 1
  Type DiskFull errors 2

Source directory and report file may also come from the config file.

Exit codes:
  0 - Report written
  1 - Report written, but some files or lines could not be processed
  2 - Configuration error or report could not be written`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Config file (YAML)")
	cmd.Flags().StringVarP(&opts.Encoding, "encoding", "e", "", "Log file encoding (default windows-1251)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Concurrent file scans (0 default, -1 unlimited)")
	cmd.Flags().StringVar(&opts.ErrorMarker, "error-marker", "", "Substring that selects error lines (default ERROR)")
	cmd.Flags().StringVarP(&opts.Summary, "summary", "s", SummaryAuto, "Run summary on stdout (auto|table|json|none)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary totals only (no failure list, counts or lines)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log every unparsable error line")
	cmd.Flags().BoolVar(&opts.LogJSON, "log-json", false, "Write logs as JSON")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnErrors),
		"When to fire webhook (on_errors|on_failures|always|never)")

	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts *ScanOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.New(logging.Options{Verbose: opts.Verbose, JSON: opts.LogJSON})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadScanConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	sourceDir, reportFile := cfg.SourceDir, cfg.Output
	if len(args) > 0 {
		sourceDir = args[0]
	}
	if len(args) > 1 {
		reportFile = args[1]
	}
	if sourceDir == "" {
		return fmt.Errorf("source directory is required (argument or source_dir in config)")
	}
	if reportFile == "" {
		return fmt.Errorf("report file is required (argument or output in config)")
	}

	formatter, err := createSummaryFormatter(opts.Summary, output.FormatOptions{Quiet: opts.Quiet}, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	a, err := analyzer.NewAnalyzer(
		analyzer.WithWorkers(workerLimit(cfg.Workers)),
		analyzer.WithEncoding(cfg.Encoding),
		analyzer.WithErrorMarker(cfg.ErrorMarker),
		analyzer.WithLinePattern(cfg.CompiledLinePattern()),
		analyzer.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Run(ctx, sourceDir)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report := output.NewReport(result, reportFile)

	if err := output.WriteFile(ctx, report, reportFile); err != nil {
		return err
	}
	logger.Info("report written",
		zap.String("path", reportFile),
		zap.Int64("records", report.Counts.Total()),
		zap.Int("files_failed", report.Summary.FilesFailed),
		zap.Int("malformed", report.Summary.Malformed),
		zap.Int("oversize", report.Summary.Oversize))

	if formatter != nil {
		if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("formatting summary: %w", err)
		}
	}

	// Send webhooks (errors logged but don't fail the run)
	webhook.NewClient().Notify(ctx, report, cfg.Webhooks, logger)

	if report.HasFailures() {
		ExitCode = 1
	}

	return nil
}

// loadScanConfig loads the config file, if any, and applies flag overrides.
// A --webhook-url hook is added before validation so it gets the same checks
// as configured webhooks.
func loadScanConfig(ctx context.Context, cmd *cobra.Command, opts *ScanOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.Load(ctx, opts.ConfigFile)
	} else {
		cfg, err = config.FromEnvironment()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("encoding") {
		cfg.Encoding = opts.Encoding
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("error-marker") {
		cfg.ErrorMarker = opts.ErrorMarker
	}
	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// workerLimit maps the configured worker count to an analyzer limit.
func workerLimit(configured int) int {
	switch {
	case configured == config.UnlimitedWorkers:
		return 0
	case configured <= 0:
		return analyzer.DefaultWorkers()
	default:
		return configured
	}
}

// createSummaryFormatter returns nil when no summary should be printed.
func createSummaryFormatter(mode string, opts output.FormatOptions, w io.Writer) (output.Formatter, error) {
	switch mode {
	case SummaryAuto:
		if isTerminal(w) {
			return output.NewTableFormatter(opts), nil
		}
		return nil, nil
	case SummaryTable:
		return output.NewTableFormatter(opts), nil
	case SummaryJSON:
		return output.NewJSONFormatter(opts), nil
	case SummaryNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summary format %q (use auto, table, json or none)", mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
