package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/keygate/keygate/internal/types"
)

// PrintOptions controls human-readable rendering.
type PrintOptions struct {
	NoColor bool
}

var (
	sevHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sevMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// CanColor reports whether w is an interactive terminal.
func CanColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func severityText(s types.Severity, color bool) string {
	label := string(s)
	if !color {
		return label
	}
	switch s {
	case types.SevHigh:
		return sevHighStyle.Render(label)
	case types.SevMed:
		return sevMedStyle.Render(label)
	default:
		return sevLowStyle.Render(label)
	}
}

// sortedFindings orders findings by target for humans; probe completion
// order carries no meaning.
func sortedFindings(fs []types.Finding) []types.Finding {
	out := make([]types.Finding, len(fs))
	copy(out, fs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// PrintText renders findings in a plain columnar format.
func PrintText(w io.Writer, r types.Report, opts PrintOptions) {
	color := !opts.NoColor && CanColor(w)
	fs := sortedFindings(r.Findings)
	if len(fs) == 0 {
		fmt.Fprintln(w, "No exposures found ✅")
	} else {
		maxCat := 8
		for _, f := range fs {
			if len(f.Category) > maxCat {
				maxCat = len(f.Category)
			}
		}
		for _, f := range fs {
			fmt.Fprintf(w, "%-8s %-*s %-12s %s\n", severityText(f.Severity, color), maxCat, f.Category, f.Tier, f.Message)
		}
	}
	printFooter(w, r)
}

// PrintTable renders findings as a bordered table.
func PrintTable(w io.Writer, r types.Report, opts PrintOptions) {
	color := !opts.NoColor && CanColor(w)
	fs := sortedFindings(r.Findings)
	if len(fs) == 0 {
		fmt.Fprintln(w, "No exposures found ✅")
		printFooter(w, r)
		return
	}
	tbl := tablewriter.NewWriter(w)
	tbl.Header("SEVERITY", "CATEGORY", "TARGET", "TIER", "STATUS")
	for _, f := range fs {
		status := ""
		if f.Status != 0 {
			status = fmt.Sprintf("%d", f.Status)
		}
		_ = tbl.Append([]string{severityText(f.Severity, color), f.Category, f.Target, string(f.Tier), status})
	}
	_ = tbl.Render()
	printFooter(w, r)
}

// PrintMatrix renders the identity x target access matrix collected in
// matrix mode. Cells show the HTTP status, "ERR" for transport failures and
// "-" for probes that never ran.
func PrintMatrix(w io.Writer, cells []types.MatrixCell) {
	if len(cells) == 0 {
		return
	}
	type key struct {
		target types.Target
		kind   types.ProbeKind
	}
	rows := map[key]map[types.IdentityTier]string{}
	var order []key
	for _, c := range cells {
		k := key{c.Target, c.Kind}
		if rows[k] == nil {
			rows[k] = map[types.IdentityTier]string{}
			order = append(order, k)
		}
		switch c.Class {
		case types.OutcomeStatus:
			rows[k][c.Tier] = fmt.Sprintf("%d", c.Status)
		case types.OutcomeTransportError:
			rows[k][c.Tier] = "ERR"
		default:
			rows[k][c.Tier] = "-"
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].target != order[j].target {
			if order[i].target.Kind != order[j].target.Kind {
				return order[i].target.Kind < order[j].target.Kind
			}
			return order[i].target.Name < order[j].target.Name
		}
		return order[i].kind < order[j].kind
	})

	fmt.Fprintln(w, "\nAccess matrix:")
	tbl := tablewriter.NewWriter(w)
	tbl.Header("TARGET", "PROBE", "NO AUTH", "SHARED KEY", "USER TOKEN")
	cell := func(m map[types.IdentityTier]string, tier types.IdentityTier) string {
		if v, ok := m[tier]; ok {
			return v
		}
		return "-"
	}
	for _, k := range order {
		m := rows[k]
		_ = tbl.Append([]string{
			fmt.Sprintf("%s (%s)", k.target.Name, k.target.Kind),
			string(k.kind),
			cell(m, types.TierNoAuth),
			cell(m, types.TierSharedKey),
			cell(m, types.TierUserToken),
		})
	}
	_ = tbl.Render()
}

func printFooter(w io.Writer, r types.Report) {
	s := r.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n", s.Total(), s.High, s.Medium, s.Low)
	if r.Stats.ProbesIssued > 0 || r.Stats.ProbesPlanned > 0 {
		fmt.Fprintf(w, "Probes: %d issued of %d planned across %d targets\n", r.Stats.ProbesIssued, r.Stats.ProbesPlanned, r.Stats.Targets)
	}
	if r.Stats.Duration != "" {
		fmt.Fprintf(w, "Duration: %s\n", r.Stats.Duration)
	}
	if r.Stats.Degraded {
		fmt.Fprintln(w, "Note: discovery degraded; run used the allowlist only")
	}
}
