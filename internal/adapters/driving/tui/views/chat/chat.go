// Package chat provides the question and transcript view for the TUI.
package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
)

// chromeHeight is the number of rows used by everything except the transcript.
const chromeHeight = 7

// View is the chat view: transcript, input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.PromptInput
	transcript *transcript.Transcript
	statusbar  *status.Bar
	spinner    spinner.Model

	qa        driving.DocumentQA
	sessionID string
	session   *domain.Session
	ctx       context.Context

	mode   domain.AskMode
	busy   bool
	err    error
	width  int
	height int
}

// NewView creates a chat view bound to the session sessionID.
func NewView(s *styles.Styles, km *keymap.KeyMap, qa driving.DocumentQA, sessionID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPromptInput(s),
		transcript: transcript.New(s),
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		qa:         qa,
		sessionID:  sessionID,
		ctx:        context.Background(),
		mode:       domain.AskModeSingleTurn,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init opens the session and starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.openSession())
}

func (v *View) openSession() tea.Cmd {
	qa, ctx, id := v.qa, v.ctx, v.sessionID
	return func() tea.Msg {
		sess, err := qa.Session(ctx, id, "")
		return messages.SessionOpened{Session: sess, Err: err}
	}
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.SessionOpened:
		return v, v.handleSessionOpened(msg)

	case messages.HistoryLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.transcript.Replace(msg.Turns)
		return v, nil

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.IngestCompleted:
		v.handleIngest(msg)
		return v, nil

	case messages.HistoryCleared:
		v.busy = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.transcript.Clear()
		v.statusbar.Clear()
		v.statusbar.SetMessage("Conversation cleared")
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	ready := !v.busy && v.session != nil

	switch {
	case keymap.Matches(key, v.keymap.Back):
		v.input.SetKind(input.KindQuestion)
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp):
		v.transcript.PageUp()
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollDown):
		v.transcript.PageDown()
		return v, nil

	case keymap.Matches(key, v.keymap.ToggleMode):
		if ready {
			v.toggleMode()
		}
		return v, nil

	case keymap.Matches(key, v.keymap.Ingest):
		if ready {
			v.input.SetKind(input.KindPath)
		}
		return v, nil

	case keymap.Matches(key, v.keymap.Clear):
		if !ready {
			return v, nil
		}
		v.busy = true
		return v, v.clearHistory()

	case keymap.Matches(key, v.keymap.Submit):
		if !ready {
			return v, nil
		}
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleSessionOpened(msg messages.SessionOpened) tea.Cmd {
	if msg.Err != nil {
		v.setError(msg.Err)
		return nil
	}
	v.session = msg.Session
	v.mode = msg.Session.Mode
	v.statusbar.SetMode(v.mode)
	v.statusbar.SetLoaded(msg.Session.Ready)
	return v.loadHistory()
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.busy = false
	v.statusbar.Clear()

	if msg.Message != "" {
		v.transcript.Append(domain.UserTurn(msg.Query), domain.AssistantTurn(msg.Message))
		return
	}
	if msg.Transcript != nil {
		v.transcript.Replace(msg.Transcript)
		return
	}
	v.transcript.Append(domain.UserTurn(msg.Query), domain.AssistantTurn(msg.Answer.Text))
}

func (v *View) handleIngest(msg messages.IngestCompleted) {
	v.busy = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	r := msg.Report
	v.statusbar.Clear()
	v.statusbar.SetLoaded(true)
	v.transcript.Notice(fmt.Sprintf("Ingested %s: %d documents, %d chunks, %d stored.",
		filepath.Base(msg.Path), r.Documents, r.Chunks, r.Stored))
	for _, w := range r.Warnings {
		v.transcript.Notice("Warning: " + w)
	}
	v.statusbar.SetMessage(fmt.Sprintf("Ingested %s", filepath.Base(msg.Path)))
}

func (v *View) toggleMode() {
	if v.mode == domain.AskModeConversational {
		v.mode = domain.AskModeSingleTurn
	} else {
		v.mode = domain.AskModeConversational
	}
	v.statusbar.SetMode(v.mode)
}

func (v *View) submit() tea.Cmd {
	value := v.input.Value()
	if value == "" {
		return nil
	}
	kind := v.input.Kind()
	v.input.SetKind(input.KindQuestion)
	v.busy = true
	v.err = nil

	if kind == input.KindPath {
		v.statusbar.SetState(status.StateIngesting)
		return tea.Batch(v.spinner.Tick, v.ingest(value))
	}
	v.statusbar.SetState(status.StateThinking)
	return tea.Batch(v.spinner.Tick, v.ask(value))
}

func (v *View) ask(query string) tea.Cmd {
	qa, ctx, sess, mode := v.qa, v.ctx, v.session, v.mode
	return func() tea.Msg {
		if mode == domain.AskModeConversational {
			answer, turns, err := qa.AskConversational(ctx, sess, query)
			if err != nil {
				return messages.AnswerReceived{Query: query, Message: services.UserMessage(err)}
			}
			return messages.AnswerReceived{Query: query, Answer: answer, Transcript: turns}
		}
		answer, err := qa.AskSingleTurn(ctx, sess, query)
		if err != nil {
			return messages.AnswerReceived{Query: query, Message: services.UserMessage(err)}
		}
		return messages.AnswerReceived{Query: query, Answer: answer}
	}
}

func (v *View) ingest(path string) tea.Cmd {
	qa, ctx, sess := v.qa, v.ctx, v.session
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return messages.IngestCompleted{Path: path, Err: err}
		}
		defer f.Close()

		report, err := qa.Ingest(ctx, sess, filepath.Base(path), f)
		return messages.IngestCompleted{Path: path, Report: report, Err: err}
	}
}

func (v *View) loadHistory() tea.Cmd {
	qa, ctx, sess := v.qa, v.ctx, v.session
	return func() tea.Msg {
		turns, err := qa.History(ctx, sess)
		return messages.HistoryLoaded{Turns: turns, Err: err}
	}
}

func (v *View) clearHistory() tea.Cmd {
	qa, ctx, sess := v.qa, v.ctx, v.session
	return func() tea.Msg {
		return messages.HistoryCleared{Err: qa.ClearHistory(ctx, sess)}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	title := v.styles.Title.Render("docqa")
	if v.session != nil {
		title += v.styles.Muted.Render("  session " + v.session.ID)
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(v.transcript.View())
	b.WriteString("\n")

	prompt := v.input.View()
	if v.busy {
		prompt = lipgloss.JoinHorizontal(lipgloss.Top, prompt, " ", v.spinner.View())
	}
	b.WriteString(prompt)
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.SetSize(width, height-chromeHeight)
}

// Mode returns the ask mode used for the next question.
func (v *View) Mode() domain.AskMode {
	return v.mode
}

// Session returns the open session, or nil before it is opened.
func (v *View) Session() *domain.Session {
	return v.session
}

// Busy reports whether a request is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Transcript returns the transcript component.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// Input returns the input component.
func (v *View) Input() *input.PromptInput {
	return v.input
}
