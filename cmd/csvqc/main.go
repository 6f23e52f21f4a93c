// csvqc profiles CSV files for data-quality problems from the command
// line, using the same engine as the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "csvqc",
	Short: "csvqc - CSV data-quality profiler",
	Long: `csvqc analyzes CSV files for data-quality problems: missing values,
malformed emails, future dates, implausible ages, cross-column rule
violations, duplicates, numeric outliers and inconsistent prices.

The report is printed as JSON on stdout.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
