package keygate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <report.json>",
		Short: "Render a saved report",
		Args:  cobra.ExactArgs(1),
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
			switch {
			case flagSARIF:
				return report.WriteSARIF(os.Stdout, rep)
			case flagJSON:
				return report.WriteJSON(os.Stdout, rep)
			case flagText:
				report.PrintText(os.Stdout, rep, report.PrintOptions{NoColor: flagNoColor})
			default:
				report.PrintTable(os.Stdout, rep, report.PrintOptions{NoColor: flagNoColor})
				report.PrintMatrix(os.Stdout, rep.Matrix)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
