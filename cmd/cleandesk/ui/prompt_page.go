package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"cleandesk/internal/workflow"
)

// PromptPageModel edits the inference instruction text. The default
// house-style prompt is shown as the starting point; an emptied editor
// falls back to it.
type PromptPageModel struct {
	controller *workflow.InferenceController
	styles     Styles

	width  int
	height int

	editor  textarea.Model
	editing bool
	applied string
}

// NewPromptPageModel creates the prompt editor.
func NewPromptPageModel(controller *workflow.InferenceController, styles Styles) PromptPageModel {
	ta := textarea.New()
	ta.SetValue(controller.Prompt())
	ta.CharLimit = 0

	return PromptPageModel{
		controller: controller,
		styles:     styles,
		editor:     ta,
	}
}

// SetSize updates the page dimensions.
func (m *PromptPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editor.SetWidth(width - 6)
	if height > 6 {
		m.editor.SetHeight(height - 6)
	}
}

// Focused reports whether the editor is capturing keystrokes.
func (m PromptPageModel) Focused() bool {
	return m.editing
}

// Update handles messages.
func (m PromptPageModel) Update(msg tea.Msg) (PromptPageModel, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	if !m.editing {
		switch key.String() {
		case "enter", "e":
			m.editing = true
			m.editor.Focus()
			return m, textarea.Blink
		case "r":
			m.controller.SetCustomPrompt("")
			m.editor.SetValue(workflow.DefaultPrompt)
			m.applied = "Restored the default instruction."
		}
		return m, nil
	}

	switch key.String() {
	case "esc":
		m.editing = false
		m.editor.Blur()
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.editor.Value())
		m.controller.SetCustomPrompt(text)
		m.editing = false
		m.editor.Blur()
		if text == "" {
			m.editor.SetValue(workflow.DefaultPrompt)
			m.applied = "Empty prompt; using the default instruction."
		} else {
			m.applied = "Custom instruction applied."
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m PromptPageModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Inference instruction"))
	if m.controller.UsingCustomPrompt() {
		b.WriteString("  " + m.styles.Badge.Render("custom"))
	} else {
		b.WriteString("  " + m.styles.Muted.Render("default"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n")

	if m.applied != "" {
		b.WriteString(m.styles.Info.Render(m.applied) + "\n")
	}
	if m.editing {
		b.WriteString(m.styles.Muted.Render("ctrl+s apply · esc cancel"))
	} else {
		b.WriteString(m.styles.Muted.Render("enter edit · r restore default · tab next page"))
	}
	return m.styles.Content.Render(b.String())
}
