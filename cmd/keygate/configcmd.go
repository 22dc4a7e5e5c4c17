package keygate

import (
	"fmt"
	"os"

	"github.com/keygate/keygate/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput     string
	cfgURL        string
	cfgAllowlist  string
	cfgDiscovery  bool
	cfgNoAuth     bool
	cfgMatrix     bool
	cfgRPC        bool
	cfgStorage    bool
	cfgStrict     bool
	cfgSampleRows int
	cfgMinDelay   string
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .keygate.yml with selected audit options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".keygate.yml", "output file path")
	initCmd.Flags().StringVar(&cfgURL, "url", "", "project base URL")
	initCmd.Flags().StringVar(&cfgAllowlist, "allowlist", "", "path to a table allowlist file")
	initCmd.Flags().BoolVar(&cfgDiscovery, "discover", true, "enumerate tables from the OpenAPI root")
	initCmd.Flags().BoolVar(&cfgNoAuth, "no-auth", false, "probe without credentials as well")
	initCmd.Flags().BoolVar(&cfgMatrix, "matrix", false, "probe every available credential tier")
	initCmd.Flags().BoolVar(&cfgRPC, "probe-rpc", false, "invoke discovered RPC functions")
	initCmd.Flags().BoolVar(&cfgStorage, "storage", false, "probe storage buckets")
	initCmd.Flags().BoolVar(&cfgStrict, "strict", false, "exit non-zero on new high findings")
	initCmd.Flags().IntVar(&cfgSampleRows, "sample-rows", 0, "rows per sample probe (0 disables sampling)")
	initCmd.Flags().StringVar(&cfgMinDelay, "min-delay", "", "minimum delay between probes, e.g. 250ms")
}

// runConfigInit writes audit options only. Credentials stay in flags and
// environment variables and are never persisted to config files.
func runConfigInit(_ *cobra.Command, _ []string) error {
	fc := config.FileConfig{
		URL:        optStrPtr(cfgURL),
		Allowlist:  optStrPtr(cfgAllowlist),
		Discovery:  boolPtr(cfgDiscovery),
		NoAuth:     boolPtr(cfgNoAuth),
		Matrix:     boolPtr(cfgMatrix),
		RPC:        boolPtr(cfgRPC),
		Storage:    boolPtr(cfgStorage),
		Strict:     boolPtr(cfgStrict),
		SampleRows: intPtr(cfgSampleRows),
		MinDelay:   optStrPtr(cfgMinDelay),
	}
	if cfgSampleRows > 0 {
		fc.Sample = boolPtr(true)
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Println("Wrote", cfgOutput)
	return nil
}

func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func boolPtr(v bool) *bool { return &v }
