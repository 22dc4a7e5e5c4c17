package keygate

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// gendocs regenerates the probe reference section in README.md between the
// markers <!-- BEGIN:PROBE_REFERENCE --> and <!-- END:PROBE_REFERENCE -->.
func init() {
	cmd := &cobra.Command{
		Use:   "gendocs",
		Short: "Regenerate the README probe reference",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := "README.md"
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			start := []byte("<!-- BEGIN:PROBE_REFERENCE -->")
			end := []byte("<!-- END:PROBE_REFERENCE -->")
			i := bytes.Index(b, start)
			j := bytes.Index(b, end)
			if i < 0 || j < 0 || j <= i {
				return fmt.Errorf("markers not found in README.md")
			}

			var out strings.Builder
			out.WriteString("\n| Probe | Request | Gate | Category |\n")
			out.WriteString("|-------|---------|------|----------|\n")
			for _, p := range probeReference {
				fmt.Fprintf(&out, "| `%s` | `%s` | %s | `%s` |\n", p.Kind, p.Request, p.Gate, p.Category)
			}
			out.WriteString("\nA 2xx answer is HIGH without credentials and MEDIUM under the shared key.\n")
			out.WriteString("User-token successes appear in the matrix only. Public bucket flags and\n")
			out.WriteString("sensitive metadata names are reported at MEDIUM regardless of probe outcomes.\n")

			var nb bytes.Buffer
			nb.Write(b[:i])
			nb.Write(start)
			nb.WriteString("\n")
			nb.WriteString(out.String())
			nb.Write(end)
			nb.Write(b[j+len(end):])
			return os.WriteFile(path, nb.Bytes(), 0644)
		},
	}
	rootCmd.AddCommand(cmd)
}
