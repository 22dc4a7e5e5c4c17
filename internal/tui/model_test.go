package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keygate/keygate/internal/types"
)

func testReport() types.Report {
	return types.Report{
		Source:  "https://proj.example.test",
		Summary: types.Summary{High: 1, Medium: 2},
		Findings: []types.Finding{
			{Severity: types.SevHigh, Category: "table_read", Target: "public_posts", Tier: types.TierNoAuth, Status: 200, Message: "m1"},
			{Severity: types.SevMed, Category: "table_read", Target: "users", Tier: types.TierSharedKey, Status: 200, Message: "m2"},
			{Severity: types.SevMed, Category: "bucket_public", Target: "avatars", Message: "m3"},
		},
	}
}

func resized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func TestNewModel_RowsMatchFindings(t *testing.T) {
	m := NewModel(testReport())
	if got := len(m.table.Rows()); got != 3 {
		t.Fatalf("rows = %d", got)
	}
}

func TestSeverityFilterCycle(t *testing.T) {
	m := NewModel(testReport())
	m.cycleSeverityFilter() // high
	if len(m.filtered) != 1 || m.filtered[0].Severity != types.SevHigh {
		t.Fatalf("high filter: %+v", m.filtered)
	}
	m.cycleSeverityFilter() // medium
	if len(m.filtered) != 2 {
		t.Fatalf("medium filter: %+v", m.filtered)
	}
	m.cycleSeverityFilter() // low
	if len(m.filtered) != 0 {
		t.Fatalf("low filter: %+v", m.filtered)
	}
	m.cycleSeverityFilter() // all
	if len(m.filtered) != 3 {
		t.Fatalf("cleared filter: %+v", m.filtered)
	}
}

func TestSearchFiltersByTargetAndCategory(t *testing.T) {
	m := NewModel(testReport())
	m.searchQuery = "avat"
	m.applyFilters()
	if len(m.filtered) != 1 || m.filtered[0].Target != "avatars" {
		t.Fatalf("search: %+v", m.filtered)
	}
	m.searchQuery = "bucket"
	m.applyFilters()
	if len(m.filtered) != 1 {
		t.Fatalf("category search: %+v", m.filtered)
	}
}

func TestView_ShowsSourceAndCounts(t *testing.T) {
	m := resized(NewModel(testReport()))
	out := m.View()
	if !strings.Contains(out, "proj.example.test") {
		t.Fatalf("missing source: %q", out)
	}
	if !strings.Contains(out, "3 findings") {
		t.Fatalf("missing count: %q", out)
	}
}

func TestQuitKey(t *testing.T) {
	m := resized(NewModel(testReport()))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Fatal("expected quitting state")
	}
}

func TestFindingJSON_PlainFallback(t *testing.T) {
	f := testReport().Findings[0]
	out := findingJSON(f, false)
	if !strings.Contains(out, `"table_read"`) {
		t.Fatalf("plain JSON missing category: %q", out)
	}
}
