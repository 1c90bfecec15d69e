package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"cleandesk/internal/api"
	"cleandesk/internal/session"
	"cleandesk/internal/workflow"
)

func keyDown() tea.Msg  { return tea.KeyMsg{Type: tea.KeyDown} }
func keyEnter() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyRune(r rune) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// moveTo advances the setup cursor until the predicate matches the
// current row, failing the test if it never does.
func moveTo(t *testing.T, m SetupPageModel, match func(setupRow) bool) SetupPageModel {
	t.Helper()
	for i := 0; i < 64; i++ {
		rows := m.rows()
		if match(rows[m.cursor]) {
			return m
		}
		m, _, _ = m.Update(keyDown())
	}
	t.Fatal("row not reachable")
	return m
}

func TestSetupSelectMetric(t *testing.T) {
	store := session.NewStore()
	m := NewSetupPageModel(store, DefaultStyles())

	m = moveTo(t, m, func(r setupRow) bool {
		return r.kind == rowMetric && r.value == string(session.MetricPEX)
	})
	m, action, _ := m.Update(keyEnter())

	if action != setupActionNone {
		t.Errorf("metric selection triggered action %v", action)
	}
	if store.Selection().Metric != session.MetricPEX {
		t.Errorf("metric = %s, want pex", store.Selection().Metric)
	}
	if store.Selection().SubMetric != session.SubMetricPEXBI {
		t.Errorf("sub metric = %s, want first pex option", store.Selection().SubMetric)
	}
}

func TestSetupToggleRule(t *testing.T) {
	store := session.NewStore()
	m := NewSetupPageModel(store, DefaultStyles())

	m = moveTo(t, m, func(r setupRow) bool {
		return r.kind == rowRule && r.value == session.RuleRemoveOutliers
	})
	m, _, _ = m.Update(keyEnter())

	if !store.Rules()[session.RuleRemoveOutliers] {
		t.Error("rule not toggled on")
	}

	m, _, _ = m.Update(keyEnter())
	if store.Rules()[session.RuleRemoveOutliers] {
		t.Error("rule not toggled back off")
	}
}

func TestSetupRunActionOnRunRow(t *testing.T) {
	store := session.NewStore()
	m := NewSetupPageModel(store, DefaultStyles())

	m = moveTo(t, m, func(r setupRow) bool { return r.kind == rowRun })
	_, action, _ := m.Update(keyEnter())
	if action != setupActionRun {
		t.Errorf("action = %v, want run", action)
	}
}

func TestSetupVendorRowOnlyForPEXVendor(t *testing.T) {
	store := session.NewStore()
	m := NewSetupPageModel(store, DefaultStyles())

	hasVendor := func() bool {
		for _, r := range m.rows() {
			if r.kind == rowVendor {
				return true
			}
		}
		return false
	}

	if hasVendor() {
		t.Error("vendor row shown for sales")
	}
	store.SelectMetric(session.MetricPEX)
	if hasVendor() {
		t.Error("vendor row shown for pex-bi")
	}
	store.SelectSubMetric(session.SubMetricPEXVendor)
	if !hasVendor() {
		t.Error("vendor row missing for pex-vendor")
	}
}

func TestResultsPageSelection(t *testing.T) {
	m := NewResultsPageModel(DefaultStyles())
	m.SetSize(120, 40)

	m.SetResults([]api.ProcessResult{
		{Filename: "a.md", Result: api.ResultPayload{Success: true, DocxBase64: "aGk="}},
		{Filename: "b.md", Result: api.ResultPayload{Success: false, Error: "boom"}},
	})

	if sel := m.Selected(); sel == nil || sel.Filename != "a.md" {
		t.Fatalf("first result not auto-selected: %+v", sel)
	}

	m, req, _ := m.Update(keyRune('d'))
	if req != saveSelected {
		t.Errorf("d produced %v, want saveSelected", req)
	}

	m, req, _ = m.Update(keyRune('a'))
	if req != saveAll {
		t.Errorf("a produced %v, want saveAll", req)
	}
}

func TestResultsPageSaveIgnoredWhenEmpty(t *testing.T) {
	m := NewResultsPageModel(DefaultStyles())
	if _, req, _ := m.Update(keyRune('a')); req != saveNone {
		t.Errorf("save requested with no results: %v", req)
	}
}

func TestPromptPageApplyCustom(t *testing.T) {
	controller := workflow.NewInferenceController(session.NewStore(), nil)
	m := NewPromptPageModel(controller, DefaultStyles())
	m.SetSize(100, 30)

	m, _ = m.Update(keyEnter())
	if !m.Focused() {
		t.Fatal("enter did not focus the editor")
	}

	m.editor.SetValue("Keep it short.")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.Focused() {
		t.Error("ctrl+s left the editor focused")
	}
	if !controller.UsingCustomPrompt() || controller.Prompt() != "Keep it short." {
		t.Errorf("prompt = %q custom=%v", controller.Prompt(), controller.UsingCustomPrompt())
	}
}

func TestPromptPageEmptyRestoresDefault(t *testing.T) {
	controller := workflow.NewInferenceController(session.NewStore(), nil)
	m := NewPromptPageModel(controller, DefaultStyles())

	m, _ = m.Update(keyEnter())
	m.editor.SetValue("")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if controller.UsingCustomPrompt() {
		t.Error("empty editor applied as a custom prompt")
	}
	if controller.Prompt() != workflow.DefaultPrompt {
		t.Error("default prompt not restored")
	}
}

func TestStylesThemes(t *testing.T) {
	light := NewStyles(LightTheme())
	dark := NewStyles(DarkTheme())

	if light.Theme.IsDark {
		t.Error("light theme marked dark")
	}
	if !dark.Theme.IsDark {
		t.Error("dark theme marked light")
	}
	if light.Theme.Primary == dark.Theme.Primary {
		t.Error("themes share a primary color")
	}
}
