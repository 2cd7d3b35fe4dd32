// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question and transcript view.
	ViewChat ViewType = iota
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// SessionOpened carries the restored or new session.
type SessionOpened struct {
	Session *domain.Session
	Err     error
}

// QuestionAsked is sent when the user submits a question.
type QuestionAsked struct {
	Query string
	Mode  domain.AskMode
}

// AnswerReceived carries an answer back to the model. Transcript is set for
// conversational answers. Message replaces Answer when the question failed.
type AnswerReceived struct {
	Query      string
	Answer     *domain.Answer
	Transcript []domain.Turn
	Message    string
}

// IngestRequested is sent when the user submits a file path.
type IngestRequested struct {
	Path string
}

// IngestCompleted carries the result of ingesting a file.
type IngestCompleted struct {
	Path   string
	Report *domain.IngestReport
	Err    error
}

// HistoryLoaded carries the session transcript.
type HistoryLoaded struct {
	Turns []domain.Turn
	Err   error
}

// HistoryCleared signals the session memory was emptied.
type HistoryCleared struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
