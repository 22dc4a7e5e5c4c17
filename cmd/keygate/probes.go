package keygate

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// probeReference is the canonical description of every probe kind: what it
// sends, what gates it, and the severity of a 2xx answer per tier. gendocs
// renders the same data into the README.
var probeReference = []struct {
	Kind     string
	Request  string
	Gate     string
	Category string
}{
	{"read", "GET /rest/v1/{table}?select=*&limit=1", "always on", "table_read"},
	{"read_sample", "GET /rest/v1/{table}?select=*&limit=N", "--sample", "table_sample"},
	{"list_objects", "POST /storage/v1/object/list/{bucket} (1 entry)", "--storage", "bucket_list"},
	{"mutate_patch", "PATCH /rest/v1/{table}?{zero-match filter}", "--probe-mutations", "table_patch"},
	{"mutate_delete", "DELETE /rest/v1/{table}?{zero-match filter}", "--probe-mutations", "table_delete"},
	{"mutate_create", "POST /rest/v1/{table} with {}", "--probe-inserts", "table_insert"},
	{"rpc_invoke", "POST /rest/v1/rpc/{fn} with {}", "--probe-rpc", "rpc_invoke"},
}

func init() {
	cmd := &cobra.Command{
		Use:   "probes",
		Short: "List probe kinds and the classification policy",
		RunE: func(_ *cobra.Command, _ []string) error {
			tbl := tablewriter.NewWriter(os.Stdout)
			tbl.Header("PROBE", "REQUEST", "GATE", "CATEGORY")
			for _, p := range probeReference {
				_ = tbl.Append([]string{p.Kind, p.Request, p.Gate, p.Category})
			}
			if err := tbl.Render(); err != nil {
				return err
			}
			fmt.Println()
			fmt.Println("Classification: a 2xx answer is HIGH without credentials, MEDIUM under the")
			fmt.Println("shared key, and matrix-only under a user token. Denials, transport errors")
			fmt.Println("and skipped probes never produce findings. Public bucket flags and")
			fmt.Println("sensitive metadata names are MEDIUM regardless of probe outcomes.")
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
