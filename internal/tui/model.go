package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keygate/keygate/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	sevHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// severityText returns plain text for severity (ANSI codes break table truncation).
func severityText(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "HIGH"
	case types.SevMed:
		return "MED"
	default:
		return "LOW"
	}
}

// Model is the findings browser state.
type Model struct {
	report   types.Report
	table    table.Model
	viewport viewport.Model

	filtered []types.Finding // findings after search/severity filter

	searchMode  bool
	searchInput textinput.Model
	searchQuery string
	sevFilter   types.Severity // "" = all

	width, height int
	ready         bool
	quitting      bool
	statusMessage string
	showHelp      bool
}

// NewModel builds the browser over a finished report.
func NewModel(r types.Report) Model {
	ti := textinput.New()
	ti.Placeholder = "search target or category"
	ti.CharLimit = 80

	cols := []table.Column{
		{Title: "SEV", Width: 5},
		{Title: "CATEGORY", Width: 16},
		{Title: "TARGET", Width: 24},
		{Title: "TIER", Width: 11},
		{Title: "STATUS", Width: 6},
	}
	tbl := table.New(table.WithColumns(cols), table.WithFocused(true))

	m := Model{report: r, table: tbl, searchInput: ti}
	m.applyFilters()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) applyFilters() {
	m.filtered = m.filtered[:0]
	q := strings.ToLower(m.searchQuery)
	for _, f := range m.report.Findings {
		if m.sevFilter != "" && f.Severity != m.sevFilter {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(f.Target), q) && !strings.Contains(strings.ToLower(f.Category), q) {
			continue
		}
		m.filtered = append(m.filtered, f)
	}
	m.rebuildTableRows()
}

func (m *Model) rebuildTableRows() {
	rows := make([]table.Row, 0, len(m.filtered))
	for _, f := range m.filtered {
		status := ""
		if f.Status != 0 {
			status = fmt.Sprintf("%d", f.Status)
		}
		rows = append(rows, table.Row{severityText(f.Severity), f.Category, f.Target, string(f.Tier), status})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.updateDetail()
}

// selected returns the finding under the cursor, or nil.
func (m *Model) selected() *types.Finding {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) {
		return nil
	}
	return &m.filtered[i]
}

func (m *Model) cycleSeverityFilter() {
	switch m.sevFilter {
	case "":
		m.sevFilter = types.SevHigh
	case types.SevHigh:
		m.sevFilter = types.SevMed
	case types.SevMed:
		m.sevFilter = types.SevLow
	default:
		m.sevFilter = ""
	}
	m.applyFilters()
}

// findingJSON renders a finding as indented JSON, syntax highlighted for the
// detail pane.
func findingJSON(f types.Finding, highlight bool) string {
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err.Error()
	}
	if !highlight {
		return string(raw)
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		return string(raw)
	}
	it, err := lexer.Tokenise(nil, string(raw))
	if err != nil {
		return string(raw)
	}
	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, styles.Get("monokai"), it); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (m *Model) updateDetail() {
	if f := m.selected(); f != nil {
		m.viewport.SetContent(findingJSON(*f, true))
	} else {
		m.viewport.SetContent("no finding selected")
	}
	m.viewport.GotoTop()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		tableHeight := m.height - 8
		if tableHeight < 3 {
			tableHeight = 3
		}
		m.table.SetHeight(tableHeight)
		m.viewport = viewport.New(m.width-4, 12)
		m.updateDetail()
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.searchMode = false
				m.searchQuery = m.searchInput.Value()
				m.applyFilters()
				return m, nil
			case "esc":
				m.searchMode = false
				m.searchInput.SetValue("")
				m.searchQuery = ""
				m.applyFilters()
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.searchMode = true
			m.searchInput.Focus()
			return m, textinput.Blink
		case "esc":
			m.searchQuery = ""
			m.sevFilter = ""
			m.searchInput.SetValue("")
			m.showHelp = false
			m.applyFilters()
			return m, nil
		case "f":
			m.cycleSeverityFilter()
			return m, nil
		case "c":
			m.statusMessage = m.copySelected()
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.table.Cursor()
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		m.updateDetail()
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	title := titleStyle.Render(fmt.Sprintf("keygate · %s · %d findings", m.report.Source, len(m.filtered)))

	var filterLine string
	if m.sevFilter != "" {
		filterLine = " filter: " + string(m.sevFilter)
	}
	if m.searchQuery != "" {
		filterLine += " search: " + m.searchQuery
	}

	var b strings.Builder
	b.WriteString(title + filterLine + "\n")
	if m.searchMode {
		b.WriteString("/" + m.searchInput.View() + "\n")
	}
	b.WriteString(tableBorderStyle.Render(m.table.View()) + "\n")
	b.WriteString(detailBorderStyle.Render(m.viewport.View()) + "\n")

	if m.showHelp {
		b.WriteString("q quit · / search · f severity filter · c copy · esc clear\n")
	}
	status := m.statusMessage
	if status == "" {
		s := m.report.Summary
		status = fmt.Sprintf(" %s %d · %s %d · %s %d ",
			sevHighStyle.Render("high"), s.High,
			sevMedStyle.Render("medium"), s.Medium,
			sevLowStyle.Render("low"), s.Low)
	}
	b.WriteString(statusStyle.Render(status))
	return b.String()
}
