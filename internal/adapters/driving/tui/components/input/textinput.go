// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Prompt kinds. The input either takes a question or a file path to ingest.
const (
	KindQuestion Kind = iota
	KindPath
)

// Kind selects what the input is collecting.
type Kind int

const minInputWidth = 20

// PromptInput wraps a bubbles textinput that collects either a question or
// a file path.
type PromptInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	kind      Kind
	width     int
}

// NewPromptInput creates a focused input in question mode.
func NewPromptInput(s *styles.Styles) *PromptInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 50

	p := &PromptInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
	p.SetKind(KindQuestion)
	return p
}

// Init initialises the input.
func (p *PromptInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *PromptInput) Update(msg tea.Msg) (*PromptInput, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the input with its label.
func (p *PromptInput) View() string {
	label := p.styles.Title.Render(p.label())
	field := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

func (p *PromptInput) label() string {
	if p.kind == KindPath {
		return "File: "
	}
	return "Ask: "
}

// SetKind switches between question and path entry and clears the input.
func (p *PromptInput) SetKind(kind Kind) {
	p.kind = kind
	p.textinput.Reset()
	if kind == KindPath {
		p.textinput.Placeholder = "Path to a .pdf, .docx, .html, .md or .txt file"
		return
	}
	p.textinput.Placeholder = "Ask a question about the document..."
}

// Kind returns what the input is collecting.
func (p *PromptInput) Kind() Kind {
	return p.kind
}

// Value returns the trimmed input value.
func (p *PromptInput) Value() string {
	return strings.TrimSpace(p.textinput.Value())
}

// SetValue sets the input value.
func (p *PromptInput) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *PromptInput) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *PromptInput) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *PromptInput) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the label and border.
func (p *PromptInput) SetWidth(width int) {
	p.width = width
	p.textinput.Width = max(width-12, minInputWidth)
}

// Width returns the current width.
func (p *PromptInput) Width() int {
	return p.width
}

// Reset clears the input.
func (p *PromptInput) Reset() {
	p.textinput.Reset()
}
