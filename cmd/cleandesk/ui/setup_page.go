package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cleandesk/internal/session"
	"cleandesk/internal/workflow"
)

// setupAction is the intent the setup page hands back to the root
// model for async execution.
type setupAction int

const (
	setupActionNone setupAction = iota
	setupActionUpload
	setupActionRun
)

// row kinds in the setup page's single navigable column.
type setupRowKind int

const (
	rowPathInput setupRowKind = iota
	rowFile
	rowBulk
	rowMetric
	rowSubMetric
	rowVendor
	rowRule
	rowUpload
	rowRun
)

type setupRow struct {
	kind  setupRowKind
	index int    // position within its group
	value string // metric/sub/rule/file identity
}

// SetupPageModel drives file selection and metric/rule configuration.
type SetupPageModel struct {
	store  *session.Store
	styles Styles

	width  int
	height int

	pathInput textinput.Model
	paths     []string

	cursor int
}

// NewSetupPageModel creates the setup page bound to the session store.
func NewSetupPageModel(store *session.Store, styles Styles) SetupPageModel {
	ti := textinput.New()
	ti.Placeholder = "path to a spreadsheet, markdown file, or folder"
	ti.Prompt = "> "
	ti.Focus()

	m := SetupPageModel{
		store:     store,
		styles:    styles,
		pathInput: ti,
	}
	for _, f := range store.Files() {
		m.paths = append(m.paths, f.Path)
	}
	return m
}

// SetSize updates the page dimensions.
func (m *SetupPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = width - 8
}

// Typing reports whether the cursor sits on the path input, meaning
// printable keys belong to it.
func (m SetupPageModel) Typing() bool {
	return m.cursor == 0
}

// SelectedPaths returns the files queued for the next run.
func (m SetupPageModel) SelectedPaths() []string {
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// rows recomputes the navigable column from the current store state.
func (m SetupPageModel) rows() []setupRow {
	rows := []setupRow{{kind: rowPathInput}}
	for i, p := range m.paths {
		rows = append(rows, setupRow{kind: rowFile, index: i, value: p})
	}
	rows = append(rows, setupRow{kind: rowBulk})

	sel := m.store.Selection()
	for i, metric := range session.AllMetrics() {
		rows = append(rows, setupRow{kind: rowMetric, index: i, value: string(metric)})
	}
	for i, sub := range session.SubOptions(sel.Metric) {
		rows = append(rows, setupRow{kind: rowSubMetric, index: i, value: sub})
	}
	if sel.Metric == session.MetricPEX && sel.SubMetric == session.SubMetricPEXVendor {
		rows = append(rows, setupRow{kind: rowVendor})
	}
	if session.IsCleaningMetric(sel.Metric) {
		for i, rule := range session.RuleNames() {
			rows = append(rows, setupRow{kind: rowRule, index: i, value: rule})
		}
	}

	rows = append(rows, setupRow{kind: rowUpload}, setupRow{kind: rowRun})
	return rows
}

// Update handles messages and reports any triggered action.
func (m SetupPageModel) Update(msg tea.Msg) (SetupPageModel, setupAction, tea.Cmd) {
	rows := m.rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	current := rows[m.cursor]

	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, setupActionNone, cmd
	}

	switch keyMsg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, setupActionNone, nil
	case "down":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
		return m, setupActionNone, nil
	}

	// The path input swallows everything else while the cursor is on it.
	if current.kind == rowPathInput {
		if keyMsg.String() == "enter" {
			m.addPath(strings.TrimSpace(m.pathInput.Value()))
			m.pathInput.SetValue("")
			return m, setupActionNone, nil
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, setupActionNone, cmd
	}

	switch keyMsg.String() {
	case "enter", " ":
		return m.activate(current)
	case "x", "backspace":
		if current.kind == rowFile {
			m.paths = append(m.paths[:current.index], m.paths[current.index+1:]...)
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, setupActionNone, nil
}

// addPath queues one file, or a folder's processable files.
func (m *SetupPageModel) addPath(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if expanded, err := workflow.ExpandFolder(path); err == nil {
			m.paths = append(m.paths, expanded...)
			m.store.SetBulkMode(true)
		}
		return
	}
	m.paths = append(m.paths, path)
}

func (m SetupPageModel) activate(row setupRow) (SetupPageModel, setupAction, tea.Cmd) {
	switch row.kind {
	case rowBulk:
		m.store.SetBulkMode(!m.store.BulkMode())
	case rowMetric:
		m.store.SelectMetric(session.Metric(row.value))
	case rowSubMetric:
		m.store.SelectSubMetric(row.value)
	case rowVendor:
		if m.store.VendorAnalysisType() == session.VendorMoM {
			m.store.SetVendorAnalysisType(session.VendorQTD)
		} else {
			m.store.SetVendorAnalysisType(session.VendorMoM)
		}
	case rowRule:
		_ = m.store.ToggleRule(row.value)
	case rowUpload:
		return m, setupActionUpload, nil
	case rowRun:
		return m, setupActionRun, nil
	}
	return m, setupActionNone, nil
}

func (m SetupPageModel) View() string {
	var b strings.Builder
	sel := m.store.Selection()

	mark := func(on bool) string {
		if on {
			return m.styles.ToggleOn.Render("[x]")
		}
		return m.styles.ToggleOff.Render("[ ]")
	}
	pointer := func(active bool) string {
		if active {
			return m.styles.Selected.Render("› ")
		}
		return "  "
	}

	rows := m.rows()
	for i, row := range rows {
		active := i == m.cursor
		switch row.kind {
		case rowPathInput:
			b.WriteString(m.styles.Title.Render("Files"))
			b.WriteString("\n")
			b.WriteString(pointer(active) + m.pathInput.View() + "\n")
		case rowFile:
			name := row.value
			b.WriteString(fmt.Sprintf("%s  %s %s\n", pointer(active), "•", name))
		case rowBulk:
			b.WriteString(fmt.Sprintf("%s%s bulk mode\n\n", pointer(active), mark(m.store.BulkMode())))
			b.WriteString(m.styles.Title.Render("Metric"))
			b.WriteString("\n")
		case rowMetric:
			chosen := string(sel.Metric) == row.value
			marker := "( )"
			if chosen {
				marker = m.styles.ToggleOn.Render("(•)")
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", pointer(active), marker, row.value))
		case rowSubMetric:
			chosen := sel.SubMetric == row.value
			marker := "( )"
			if chosen {
				marker = m.styles.ToggleOn.Render("(•)")
			}
			b.WriteString(fmt.Sprintf("%s    %s %s\n", pointer(active), marker, row.value))
		case rowVendor:
			b.WriteString(fmt.Sprintf("%s    vendor window: %s\n", pointer(active),
				m.styles.Bold.Render(string(m.store.VendorAnalysisType()))))
		case rowRule:
			if row.index == 0 {
				b.WriteString("\n" + m.styles.Title.Render("Cleaning rules") + "\n")
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", pointer(active), mark(m.store.Rules()[row.value]), row.value))
		case rowUpload:
			b.WriteString("\n")
			b.WriteString(pointer(active) + m.styles.Badge.Render(" Upload ") + "\n")
		case rowRun:
			b.WriteString(pointer(active) + m.styles.Badge.Render(" Run ") + "\n")
		}
	}

	b.WriteString("\n" + m.styles.Muted.Render("enter/space select · x remove file · tab next page · q quit"))
	return m.styles.Content.Render(b.String())
}
