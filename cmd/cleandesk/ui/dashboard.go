package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cleandesk/internal/api"
	"cleandesk/internal/config"
	"cleandesk/internal/session"
	"cleandesk/internal/workflow"
)

// Deps carries the wired components the dashboard operates on.
type Deps struct {
	Config *config.Config
	Store  *session.Store
	Client *api.Client
}

type page int

const (
	pageSetup page = iota
	pageRun
	pageResults
	pagePrompt
)

var pageNames = map[page]string{
	pageSetup:   "Setup",
	pageRun:     "Run",
	pageResults: "Results",
	pagePrompt:  "Prompt",
}

// Model is the root dashboard model. Page sub-models own their widgets;
// the root handles page switching and the shared status line.
type Model struct {
	deps   Deps
	styles Styles

	width  int
	height int
	active page

	setup   SetupPageModel
	run     RunPageModel
	results ResultsPageModel
	prompt  PromptPageModel

	uploader  *workflow.Uploader
	executor  *workflow.Executor
	pipeline  *workflow.PipelineController
	inference *workflow.InferenceController

	busy   bool
	status string
	errMsg string
}

// NewModel builds the dashboard around the shared store and client.
func NewModel(deps Deps) Model {
	styles := DefaultStyles()

	executor := workflow.NewExecutor(deps.Store, deps.Client)
	pipeline := workflow.NewPipelineController(deps.Store, deps.Client)
	inference := workflow.NewInferenceController(deps.Store, deps.Client)

	return Model{
		deps:      deps,
		styles:    styles,
		setup:     NewSetupPageModel(deps.Store, styles),
		run:       NewRunPageModel(executor, styles),
		results:   NewResultsPageModel(styles),
		prompt:    NewPromptPageModel(inference, styles),
		uploader:  workflow.NewUploader(deps.Store, deps.Client),
		executor:  executor,
		pipeline:  pipeline,
		inference: inference,
		status:    "Select files and a metric, then press enter to run.",
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(deps Deps) error {
	_, err := tea.NewProgram(NewModel(deps), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Messages produced by the async workflow commands.
type (
	uploadedMsg struct {
		sessionID string
		count     int
		err       error
	}
	cleanDoneMsg struct{ err error }
	batchDoneMsg struct {
		kind    string
		results []api.ProcessResult
		err     error
	}
	docsSavedMsg struct {
		paths []string
		err   error
	}
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := msg.Height - 4 // header, tab bar, status line
		m.setup.SetSize(msg.Width, contentHeight)
		m.run.SetSize(msg.Width, contentHeight)
		m.results.SetSize(msg.Width, contentHeight)
		m.prompt.SetSize(msg.Width, contentHeight)

	case tea.KeyMsg:
		// The prompt editor owns most keys while focused.
		if m.active == pagePrompt && m.prompt.Focused() {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// Not while typing a path on the setup page.
			if !(m.active == pageSetup && m.setup.Typing()) {
				return m, tea.Quit
			}
		case "tab":
			m.active = (m.active + 1) % 4
			return m, nil
		case "shift+tab":
			m.active = (m.active + 3) % 4
			return m, nil
		}

	case uploadedMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Upload failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("Session %s started with %d file(s).", msg.sessionID, msg.count)
		return m, nil

	case cleanDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Cleaning failed: %v", msg.err)
		} else {
			m.errMsg = ""
			m.status = "Cleaning complete. Press z on the Run page to download the archive."
		}
		return m, nil

	case batchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("%s failed: %v", msg.kind, msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("%s finished: %d result(s).", msg.kind, len(msg.results))
		m.results.SetResults(msg.results)
		m.active = pageResults
		return m, nil

	case progressTickMsg:
		// Poll the executor whichever page is visible; stop once the
		// run has ended.
		var cmd tea.Cmd
		m.run, _, cmd = m.run.Update(msg)
		if m.busy {
			return m, cmd
		}
		return m, nil

	case docsSavedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Save incomplete: %v", msg.err)
		} else {
			m.errMsg = ""
			m.status = fmt.Sprintf("Saved %d document(s) to %s.", len(msg.paths), m.deps.Config.Downloads.Dir)
		}
		return m, nil
	}

	// Route to the active page.
	var cmd tea.Cmd
	switch m.active {
	case pageSetup:
		var action setupAction
		m.setup, action, cmd = m.setup.Update(msg)
		cmds = append(cmds, cmd)
		if c := m.handleSetupAction(action); c != nil {
			cmds = append(cmds, c)
		}
	case pageRun:
		var action runAction
		m.run, action, cmd = m.run.Update(msg)
		cmds = append(cmds, cmd)
		if action == runActionDownloadZip {
			cmds = append(cmds, m.downloadZipCmd())
		}
	case pageResults:
		var save saveRequest
		m.results, save, cmd = m.results.Update(msg)
		cmds = append(cmds, cmd)
		if save != saveNone {
			cmds = append(cmds, m.saveDocsCmd(save))
		}
	case pagePrompt:
		m.prompt, cmd = m.prompt.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleSetupAction turns a setup page intent into an async command.
func (m *Model) handleSetupAction(action setupAction) tea.Cmd {
	if action == setupActionNone || m.busy {
		return nil
	}

	switch action {
	case setupActionUpload:
		paths := m.setup.SelectedPaths()
		if len(paths) == 0 {
			m.errMsg = "No files selected."
			return nil
		}
		m.busy = true
		m.status = "Uploading..."
		bulk := m.deps.Store.BulkMode() || len(paths) > 1
		return func() tea.Msg {
			sid, err := m.uploader.Upload(context.Background(), paths, bulk)
			return uploadedMsg{sessionID: sid, count: len(paths), err: err}
		}

	case setupActionRun:
		sel := m.deps.Store.Selection()
		switch sel.Metric {
		case session.MetricPipeline:
			return m.submitBatchCmd("Pipeline", m.pipeline.Submit)
		case session.MetricInference:
			return m.submitBatchCmd("Inference", m.inference.Submit)
		default:
			m.busy = true
			m.status = "Cleaning..."
			m.active = pageRun
			executor := m.executor
			return tea.Batch(
				func() tea.Msg { return cleanDoneMsg{err: executor.Run(context.Background())} },
				m.run.tickCmd(),
			)
		}
	}
	return nil
}

// submitBatchCmd runs the pipeline or inference flow on the selected
// local paths.
func (m *Model) submitBatchCmd(kind string, submit func(context.Context, []string) error) tea.Cmd {
	paths := m.setup.SelectedPaths()
	if len(paths) == 0 {
		m.errMsg = "No files selected."
		return nil
	}
	m.busy = true
	m.status = kind + " running..."

	results := func() []api.ProcessResult {
		if kind == "Pipeline" {
			return m.pipeline.Results()
		}
		return m.inference.Results()
	}
	return func() tea.Msg {
		err := submit(context.Background(), paths)
		return batchDoneMsg{kind: kind, results: results(), err: err}
	}
}

// saveDocsCmd saves one or all result documents to the downloads dir.
func (m *Model) saveDocsCmd(req saveRequest) tea.Cmd {
	destDir := m.deps.Config.Downloads.Dir
	if req == saveSelected {
		res := m.results.Selected()
		if res == nil {
			return nil
		}
		return func() tea.Msg {
			path, err := workflow.SaveResult(res, destDir)
			return docsSavedMsg{paths: []string{path}, err: err}
		}
	}

	results := m.results.Results()
	return func() tea.Msg {
		paths, err := workflow.SaveAllResults(context.Background(), results, destDir)
		return docsSavedMsg{paths: paths, err: err}
	}
}

// downloadZipCmd fetches the cleaned-files archive for the session.
func (m *Model) downloadZipCmd() tea.Cmd {
	if !m.deps.Store.HasSession() {
		m.errMsg = "No active session."
		return nil
	}
	sid := m.deps.Store.SessionID()
	client := m.deps.Client
	destDir := m.deps.Config.Downloads.Dir
	return func() tea.Msg {
		path, err := client.DownloadZip(context.Background(), sid, destDir)
		return docsSavedMsg{paths: []string{path}, err: err}
	}
}

func (m Model) View() string {
	header := m.styles.Header.Width(m.width).Render("cleandesk — financial data cleaning")

	var tabs []string
	for p := pageSetup; p <= pagePrompt; p++ {
		name := pageNames[p]
		if p == m.active {
			tabs = append(tabs, m.styles.Selected.Render("["+name+"]"))
		} else {
			tabs = append(tabs, m.styles.Muted.Render(" "+name+" "))
		}
	}
	tabBar := m.styles.Content.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	var body string
	switch m.active {
	case pageSetup:
		body = m.setup.View()
	case pageRun:
		body = m.run.View()
	case pageResults:
		body = m.results.View()
	case pagePrompt:
		body = m.prompt.View()
	}

	status := m.status
	statusStyle := m.styles.Footer
	if m.errMsg != "" {
		status = m.errMsg
		statusStyle = m.styles.Error.Padding(0, 2)
	}
	if m.busy {
		status = "⏳ " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tabBar,
		body,
		statusStyle.Render(status),
	)
}
