package keygate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON          bool
	flagSARIF         bool
	flagText          bool
	flagNoColor       bool
	flagReportFile    string
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the keygate CLI.
var rootCmd = &cobra.Command{
	Use:           "keygate",
	Short:         "Audit what each credential tier can do against your data API",
	Long:          "keygate probes a backend-as-a-service data API (tables, RPCs, storage buckets) under three credential tiers and reports what is actually reachable over the network right now.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the keygate CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit the report as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().BoolVar(&flagText, "text", false, "plain text columnar output (default is a table)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagReportFile, "report", "", "also write the JSON report to this file")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}
