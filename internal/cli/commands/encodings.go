package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/errprofile/pkg/parser"
)

// NewEncodingsCommand creates the encodings command.
func NewEncodingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List supported log file encodings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range parser.SupportedEncodings() {
				marker := ""
				if name == parser.DefaultEncoding {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker)
			}
		},
	}
}
