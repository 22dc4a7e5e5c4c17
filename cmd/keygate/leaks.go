package keygate

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/findings"
	"github.com/keygate/keygate/internal/leaks"
	"github.com/keygate/keygate/internal/report"
	"github.com/keygate/keygate/internal/types"
)

func init() {
	var path string
	var historyN int
	cmd := &cobra.Command{
		Use:   "leaks",
		Short: "Scan the local repo for committed service credentials",
		Long:  "Finds service-role JWTs and database URIs with inline credentials in the working tree and, optionally, recent commit history. A leaked service-role key voids every policy the network audit probes for.",
		RunE: func(_ *cobra.Command, _ []string) error {
			abs, _ := filepath.Abs(path)
			agg := findings.New()

			fs, err := leaks.ScanTree(abs)
			if err != nil {
				return err
			}
			agg.RecordAll(fs)

			if historyN > 0 {
				hs, err := leaks.ScanHistory(abs, historyN)
				if err == nil {
					agg.RecordAll(hs)
				}
				// not a git repo is fine; the tree scan already ran
			}

			rep := report.Build(report.Meta{Tool: "keygate", Version: version, Source: abs},
				types.Options{Strict: flagStrict}, agg)
			switch {
			case flagJSON:
				if err := report.WriteJSON(os.Stdout, rep); err != nil {
					return err
				}
			default:
				report.PrintTable(os.Stdout, rep, report.PrintOptions{NoColor: flagNoColor})
			}
			if report.ShouldFail(rep.Summary, flagStrict) {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", ".", "path to scan")
	cmd.Flags().IntVar(&historyN, "history", 0, "also scan last N commits (0=off)")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "exit non-zero on High findings")
	rootCmd.AddCommand(cmd)
}
