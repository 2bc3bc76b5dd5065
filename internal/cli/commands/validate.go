package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/errprofile/pkg/config"
	"github.com/ccollicutt/errprofile/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an errprofile configuration file without scanning.

Checks:
  - YAML syntax
  - Encoding label
  - Line pattern validity and capture groups
  - Webhook settings
  - Source directory readability (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	pattern := "default"
	if cfg.LinePattern != "" {
		pattern = cfg.LinePattern
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Encoding:     %s\n", cfg.Encoding)
	fmt.Fprintf(w, "  Error marker: %s\n", cfg.ErrorMarker)
	fmt.Fprintf(w, "  Line pattern: %s\n", pattern)
	fmt.Fprintf(w, "  Workers:      %s\n", describeWorkers(cfg.Workers))
	fmt.Fprintf(w, "  Webhooks:     %d\n", len(cfg.Webhooks))

	if cfg.Output != "" {
		fmt.Fprintf(w, "  Report file:  %s\n", cfg.Output)
	}

	if cfg.SourceDir == "" {
		return nil
	}

	// Check the source directory (warnings only)
	files, err := parser.Discover(cfg.SourceDir, nil)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: %v\n", err)
	} else {
		fmt.Fprintf(w, "\nLog files found under %s: %d\n", cfg.SourceDir, len(files))
	}

	return nil
}

func describeWorkers(n int) string {
	switch {
	case n == config.UnlimitedWorkers:
		return "unlimited"
	case n <= 0:
		return fmt.Sprintf("default (%d)", workerLimit(n))
	default:
		return fmt.Sprintf("%d", n)
	}
}
