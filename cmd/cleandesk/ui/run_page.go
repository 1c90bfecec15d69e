package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"cleandesk/internal/workflow"
)

// runAction is the intent the run page hands back to the root model.
type runAction int

const (
	runActionNone runAction = iota
	runActionDownloadZip
)

// progressTickMsg drives the snapshot polling while a run is active.
type progressTickMsg time.Time

// RunPageModel shows the synthetic progress bar and the run log.
type RunPageModel struct {
	executor *workflow.Executor
	styles   Styles

	width  int
	height int

	bar      progress.Model
	logView  viewport.Model
	lastLogs int
	ticking  bool
}

// NewRunPageModel creates the run page bound to the executor.
func NewRunPageModel(executor *workflow.Executor, styles Styles) RunPageModel {
	bar := progress.New(progress.WithDefaultGradient())
	vp := viewport.New(0, 0)
	vp.SetContent("No run yet.")

	return RunPageModel{
		executor: executor,
		styles:   styles,
		bar:      bar,
		logView:  vp,
	}
}

// SetSize updates the page dimensions.
func (m *RunPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.bar.Width = width - 8
	m.logView.Width = width - 4
	if height > 6 {
		m.logView.Height = height - 6
	}
}

// tickCmd schedules the next snapshot poll.
func (m RunPageModel) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

// Update handles messages and reports any triggered action.
func (m RunPageModel) Update(msg tea.Msg) (RunPageModel, runAction, tea.Cmd) {
	switch msg := msg.(type) {
	case progressTickMsg:
		run := m.executor.Snapshot()
		if len(run.Logs) != m.lastLogs {
			m.lastLogs = len(run.Logs)
			m.logView.SetContent(strings.Join(run.Logs, "\n"))
			m.logView.GotoBottom()
		}
		// Keep polling until the run reaches a terminal percent and the
		// root model stops issuing ticks.
		if run.ProgressPercent < 100 {
			return m, runActionNone, m.tickCmd()
		}
		return m, runActionNone, nil

	case tea.KeyMsg:
		if msg.String() == "z" {
			return m, runActionDownloadZip, nil
		}
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, runActionNone, cmd
}

func (m RunPageModel) View() string {
	run := m.executor.Snapshot()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Processing"))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(float64(run.ProgressPercent) / 100))
	b.WriteString("\n\n")
	b.WriteString(m.logView.View())

	if len(run.CleanedFiles) > 0 {
		b.WriteString("\n\n" + m.styles.Success.Render("Cleaned files:") + "\n")
		for _, f := range run.CleanedFiles {
			b.WriteString("  " + f + "\n")
		}
	}

	b.WriteString("\n" + m.styles.Muted.Render("z download archive · tab next page"))
	return m.styles.Content.Render(b.String())
}
