package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/errprofile/pkg/config"
	"github.com/ccollicutt/errprofile/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and structure
- Source directory existence and readability
- Encoding and line pattern against a real log file
- Report file location
- Webhook settings

Example:
  errprofile diagnose config.yaml
  errprofile diagnose -v config.yaml  # verbose output, probes webhooks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Check the source directory
	sourceResult, files := checkSourceDir(cfg)
	results = append(results, sourceResult)

	// 4. Check encoding and line pattern against a real file
	if len(files) > 0 {
		results = append(results, checkLinePattern(cfg, files, opts))
	}

	// 5. Check the report location
	if cfg.Output != "" {
		results = append(results, checkReportPath(cfg.Output))
	}

	// 6. Check webhooks configuration
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Config file is empty, defaults apply"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		if strings.Contains(err.Error(), "encoding") {
			result.Suggests = append(result.Suggests, "Run 'errprofile encodings' to list supported labels")
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Encoding: %s", cfg.Encoding),
		fmt.Sprintf("Error marker: %s", cfg.ErrorMarker),
		fmt.Sprintf("Workers: %s", describeWorkers(cfg.Workers)),
	}
	return cfg, result
}

func checkSourceDir(cfg *config.Config) (DiagnosticResult, []string) {
	result := DiagnosticResult{
		Check: "Source Directory",
	}

	if cfg.SourceDir == "" {
		result.Status = "warning"
		result.Message = "No source_dir configured"
		result.Suggests = []string{"Pass the directory to 'errprofile scan' or set source_dir"}
		return result, nil
	}

	var skipped []string
	files, err := parser.Discover(cfg.SourceDir, func(path string, err error) {
		skipped = append(skipped, fmt.Sprintf("%s: %v", path, err))
	})
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read %s: %v", cfg.SourceDir, err)
		result.Suggests = []string{
			"Check the directory exists and is readable",
			"A scan of this directory writes an empty report",
		}
		return result, nil
	}

	switch {
	case len(files) == 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("No files under %s", cfg.SourceDir)
	case len(skipped) > 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d file(s) found, %d path(s) skipped", len(files), len(skipped))
		result.Details = skipped
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("%d file(s) found", len(files))
		result.Details = files
	}

	return result, files
}

// discardSink drops records; diagnostics only need the counts.
type discardSink struct{}

func (discardSink) Add(parser.Record) {}

func checkLinePattern(cfg *config.Config, files []string, opts *DiagnoseOptions) DiagnosticResult {
	logFile := files[0]
	result := DiagnosticResult{
		Check: fmt.Sprintf("Pattern Test: %s", filepath.Base(logFile)),
	}

	enc, err := parser.LookupEncoding(cfg.Encoding)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	scanOpts := []parser.ScannerOption{
		parser.WithEncoding(enc),
		parser.WithErrorMarker(cfg.ErrorMarker),
	}
	if re := cfg.CompiledLinePattern(); re != nil {
		lp, err := parser.NewLineParser(re)
		if err != nil {
			result.Status = "error"
			result.Message = err.Error()
			return result
		}
		scanOpts = append(scanOpts, parser.WithLineParser(lp))
	}

	scanner, err := parser.NewFileScanner(scanOpts...)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	fr := scanner.Scan(logFile, discardSink{})
	switch {
	case fr.Err != nil:
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot read file: %v", fr.Err)
	case fr.ErrorLines == 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("No lines contain %q", cfg.ErrorMarker)
		result.Suggests = []string{"Check error_marker matches your log format"}
	case fr.Records == 0:
		result.Status = "error"
		result.Message = fmt.Sprintf("Pattern matches none of %d error line(s)", fr.ErrorLines)
		result.Suggests = []string{
			"Check line_pattern has hour, minute and type groups",
			"Check the encoding if type names look garbled",
		}
	case fr.Malformed > 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("Pattern matches %d/%d error lines", fr.Records, fr.ErrorLines)
		result.Suggests = []string{"Run 'errprofile scan -v' to log each unparsable line"}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("Pattern matches %d/%d error lines", fr.Records, fr.ErrorLines)
		if opts.Verbose {
			result.Details = []string{fmt.Sprintf("File: %s", logFile)}
		}
	}

	return result
}

func checkReportPath(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Report File",
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Report directory not accessible: %v", err)
	case !info.IsDir():
		result.Status = "error"
		result.Message = fmt.Sprintf("%s is not a directory", dir)
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("Report will be written to %s", path)
		if _, err := os.Stat(path); err == nil {
			result.Details = []string{"Existing file will be replaced"}
		}
	}

	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== errprofile Configuration Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before scanning.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", webhookName(wh)),
			Status:  "ok",
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}
		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = "warning"
			result.Message = "Trigger is never, webhook is disabled"
		}
		if opts.Verbose {
			result.Details = []string{
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}
		results = append(results, result)
	}

	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			result := checkWebhookConnectivity(ctx, wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", webhookName(wh))
			results = append(results, result)
		}
	}

	return results
}

func webhookName(wh config.WebhookConfig) string {
	if wh.Name != "" {
		return wh.Name
	}
	return wh.URL
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to see whether the endpoint is reachable
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST (will work during an actual scan)",
			"Check authentication if using a token",
		}
	}

	return result
}
