// Package transcript renders the conversation in a scrollable viewport.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	minWidth  = 20
	minHeight = 3
)

// Transcript shows conversation turns and notices, newest at the bottom.
// Single-turn answers are appended as a user/assistant pair; a
// conversational answer replaces the whole list with the stored transcript.
type Transcript struct {
	viewport viewport.Model
	styles   *styles.Styles
	turns    []domain.Turn
	notices  []string
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		viewport: viewport.New(80, 10),
		styles:   s,
	}
	t.refresh()
	return t
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update forwards scrolling messages to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.styles.Transcript.Render(t.viewport.View())
}

// Append adds turns to the end and scrolls to them.
func (t *Transcript) Append(turns ...domain.Turn) {
	t.turns = append(t.turns, turns...)
	t.refresh()
}

// Replace swaps the turns for turns and scrolls to the end.
func (t *Transcript) Replace(turns []domain.Turn) {
	t.turns = append([]domain.Turn(nil), turns...)
	t.refresh()
}

// Notice adds a line that is not part of the conversation, such as the
// result of an ingestion. Notices are shown above the conversation.
func (t *Transcript) Notice(text string) {
	t.notices = append(t.notices, text)
	t.refresh()
}

// Clear removes every turn and notice.
func (t *Transcript) Clear() {
	t.turns = nil
	t.notices = nil
	t.refresh()
}

// Turns returns the displayed turns.
func (t *Transcript) Turns() []domain.Turn {
	return t.turns
}

// PageUp scrolls one page towards older turns.
func (t *Transcript) PageUp() {
	t.viewport.ViewUp()
}

// PageDown scrolls one page towards newer turns.
func (t *Transcript) PageDown() {
	t.viewport.ViewDown()
}

// AtBottom reports whether the newest line is visible.
func (t *Transcript) AtBottom() bool {
	return t.viewport.AtBottom()
}

// SetSize sets the viewport size and re-wraps the content.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = max(width, minWidth)
	t.viewport.Height = max(height, minHeight)
	t.refresh()
}

// Content returns the full rendered transcript, visible or not.
func (t *Transcript) Content() string {
	return t.render()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if len(t.turns) == 0 && len(t.notices) == 0 {
		return t.styles.Muted.Render("Ingest a document with ctrl+o, then ask a question.")
	}

	wrap := lipgloss.NewStyle().Width(t.viewport.Width)
	blocks := make([]string, 0, len(t.notices)+len(t.turns))
	for _, n := range t.notices {
		blocks = append(blocks, t.styles.Muted.Width(t.viewport.Width).Render(n))
	}
	for _, turn := range t.turns {
		blocks = append(blocks, wrap.Render(t.styles.Label(turn.Role)+" "+turn.Content))
	}
	return strings.Join(blocks, "\n\n")
}
