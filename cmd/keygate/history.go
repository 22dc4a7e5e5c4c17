package keygate

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/history"
)

func init() {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past audit runs",
		RunE: func(_ *cobra.Command, _ []string) error {
			dir := historyDir()
			if dir == "" {
				return fmt.Errorf("no config directory available")
			}
			recs, err := history.NewLog(dir).Load()
			if err != nil {
				fmt.Println("No runs recorded yet.")
				return nil
			}
			if limit > 0 && len(recs) > limit {
				recs = recs[:limit]
			}
			tbl := tablewriter.NewWriter(os.Stdout)
			tbl.Header("WHEN", "SOURCE", "HIGH", "MED", "LOW", "PROBES", "DURATION")
			for _, r := range recs {
				_ = tbl.Append([]string{
					r.Timestamp.Format("2006-01-02 15:04"),
					r.Source,
					fmt.Sprintf("%d", r.Summary.High),
					fmt.Sprintf("%d", r.Summary.Medium),
					fmt.Sprintf("%d", r.Summary.Low),
					fmt.Sprintf("%d", r.Stats.ProbesIssued),
					r.Stats.Duration,
				})
			}
			return tbl.Render()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many runs")
	rootCmd.AddCommand(cmd)
}
