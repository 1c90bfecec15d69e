package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"cleandesk/internal/api"
	"cleandesk/internal/workflow"
)

// saveRequest is the download intent the results page hands back.
type saveRequest int

const (
	saveNone saveRequest = iota
	saveSelected
	saveAll
)

// resultItem adapts api.ProcessResult to list.Item.
type resultItem struct {
	res *api.ProcessResult
}

func (i resultItem) Title() string { return i.res.Filename }
func (i resultItem) Description() string {
	if !i.res.Result.Success {
		return "failed: " + i.res.Result.Error
	}
	desc := "-> " + workflow.ResultFilename(i.res)
	if i.res.Result.Stats != nil {
		desc += fmt.Sprintf(" (%d tokens)", i.res.Result.Stats.TotalTokens)
	}
	return desc
}
func (i resultItem) FilterValue() string { return i.res.Filename }

// ResultsPageModel browses pipeline and inference results: a file list
// on the left, the rendered outcome on the right.
type ResultsPageModel struct {
	styles Styles

	width  int
	height int

	list     list.Model
	viewport viewport.Model
	results  []api.ProcessResult
	selected int
	renderer *glamour.TermRenderer
}

// NewResultsPageModel creates the results browser.
func NewResultsPageModel(styles Styles) ResultsPageModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Results"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	vp := viewport.New(0, 0)
	vp.SetContent("Run the pipeline or inference to see results here.")

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return ResultsPageModel{
		styles:   styles,
		list:     l,
		viewport: vp,
		selected: -1,
		renderer: renderer,
	}
}

// SetSize updates the page dimensions.
func (m *ResultsPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	listWidth := width / 3
	m.list.SetSize(listWidth, height-2)
	m.viewport.Width = width - listWidth - 4
	if height > 2 {
		m.viewport.Height = height - 2
	}
}

// SetResults replaces the result list, selecting the first entry.
func (m *ResultsPageModel) SetResults(results []api.ProcessResult) {
	m.results = results
	items := make([]list.Item, len(results))
	for i := range results {
		items[i] = resultItem{res: &m.results[i]}
	}
	m.list.SetItems(items)
	m.selected = -1
	if len(results) > 0 {
		m.list.Select(0)
		m.showResult(0)
	}
}

// Results returns the current result list.
func (m ResultsPageModel) Results() []api.ProcessResult {
	return m.results
}

// Selected returns the result in the detail pane, nil if none.
func (m ResultsPageModel) Selected() *api.ProcessResult {
	if m.selected < 0 || m.selected >= len(m.results) {
		return nil
	}
	return &m.results[m.selected]
}

func (m *ResultsPageModel) showResult(i int) {
	m.selected = i
	res := &m.results[i]

	if !res.Result.Success {
		m.viewport.SetContent(m.styles.Error.Render("Failed: ") + res.Result.Error + "\n\n" + res.Logs)
		return
	}

	body := "Document: " + workflow.ResultFilename(res) + "\n"
	if res.Result.Stats != nil {
		s := res.Result.Stats
		body += fmt.Sprintf("Tokens: input=%d prompt=%d output=%d total=%d\n",
			s.InputTokens, s.PromptTokens, s.OutputTokens, s.TotalTokens)
	}
	if res.Result.Response != "" {
		rendered := res.Result.Response
		if m.renderer != nil {
			if out, err := m.renderer.Render(res.Result.Response); err == nil {
				rendered = out
			}
		}
		body += "\n" + rendered
	}
	if res.Logs != "" {
		body += "\n" + m.styles.Muted.Render(res.Logs)
	}
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
}

// Update handles messages and reports any save intent.
func (m ResultsPageModel) Update(msg tea.Msg) (ResultsPageModel, saveRequest, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "d":
			if m.Selected() != nil {
				return m, saveSelected, nil
			}
			return m, saveNone, nil
		case "D", "a":
			if len(m.results) > 0 {
				return m, saveAll, nil
			}
			return m, saveNone, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if i := m.list.Index(); i != m.selected && i >= 0 && i < len(m.results) {
		m.showResult(i)
	}
	return m, saveNone, tea.Batch(cmds...)
}

func (m ResultsPageModel) View() string {
	if len(m.results) == 0 {
		return m.styles.Content.Render(m.styles.Muted.Render("No results yet. Run the pipeline or inference from the Setup page."))
	}

	left := m.list.View()
	right := m.styles.Panel.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	help := m.styles.Muted.Render("d save selected · a save all · tab next page")
	return m.styles.Content.Render(body + "\n" + help)
}
