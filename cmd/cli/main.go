// errprofile - error occurrence profiler for log directories.
//
// errprofile scans every file under a directory for ERROR lines and reports
// how many errors occurred per hour of day, minute of hour and error type.
package main

import (
	"os"

	"github.com/ccollicutt/errprofile/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
