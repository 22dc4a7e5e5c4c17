package keygate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage accepted exposures",
	}

	var fromReport, baselineFile string
	update := &cobra.Command{
		Use:   "update",
		Short: "Accept the findings of a saved report",
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := os.Open(fromReport)
			if err != nil {
				return fmt.Errorf("run 'keygate audit --report %s' first: %w", fromReport, err)
			}
			defer f.Close()
			rep, err := report.ReadJSON(f)
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(baselineFile, rep.Findings); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Baseline updated: %d finding(s) accepted.\n", len(rep.Findings))
			return nil
		},
	}
	update.Flags().StringVar(&fromReport, "from", "keygate.report.json", "saved report to accept")
	update.Flags().StringVar(&baselineFile, "baseline", report.DefaultBaselineFile, "baseline file to write")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove the baseline",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := os.Remove(report.DefaultBaselineFile); err != nil && !os.IsNotExist(err) {
				return err
			}
			fmt.Fprintln(os.Stdout, "Baseline cleared.")
			return nil
		},
	}

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
	cmd.AddCommand(clear)
}
