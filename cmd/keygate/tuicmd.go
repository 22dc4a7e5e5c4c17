package keygate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/report"
	"github.com/keygate/keygate/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tui <report.json>",
		Short: "Browse a saved report interactively",
		Long: `Open a saved audit report in an interactive terminal browser.
Findings can be filtered by severity, searched, and copied as JSON.

Generate a report first with: keygate audit --report keygate.report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rep, err := report.ReadJSON(f)
			if err != nil {
				return fmt.Errorf("parse report: %w", err)
			}
			return tui.Run(rep)
		},
	}
	rootCmd.AddCommand(cmd)
}
