// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionAskMode
	SectionLLM
)

// Key constants for key handling.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

var errNoSettingsService = errors.New("settings service not available")

var askModes = []domain.AskMode{domain.AskModeSingleTurn, domain.AskModeConversational}

// View is the settings configuration view. The ask mode and LLM provider
// can be changed here; the embedding endpoint and index are shown read-only
// and configured with 'docqa settings'.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	section      Section
	selected     int
	focusedField int // 1 when the API key input has focus

	apiKeyInput textinput.Model

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKeyInput := textinput.New()
	apiKeyInput.Placeholder = "Enter API key"
	apiKeyInput.EchoMode = textinput.EchoPassword
	apiKeyInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		apiKeyInput:     apiKeyInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: errNoSettingsService}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.section = SectionOverview
		v.selected = 0
		v.resetAPIKey()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewChat}
			}
		}
		v.section = SectionOverview
		v.selected = 0
		v.resetAPIKey()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionAskMode:
		return v.handleAskModeKeys(msg)
	case SectionLLM:
		return v.handleLLMKeys(msg)
	}
	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	const items = 2

	switch msg.String() {
	case keyUp, "k":
		v.moveUp()
	case keyDown, "j":
		v.moveDown(items)
	case keyEnter:
		switch v.selected {
		case 0:
			v.section = SectionAskMode
			v.selected = v.askModeIndex()
		case 1:
			v.section = SectionLLM
			v.selected = v.llmProviderIndex()
		}
	}
	return v, nil
}

func (v *View) handleAskModeKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyUp, "k":
		v.moveUp()
	case keyDown, "j":
		v.moveDown(len(askModes))
	case keyEnter:
		return v, v.setAskMode(askModes[v.selected])
	}
	return v, nil
}

func (v *View) handleLLMKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	providers := domain.AllLLMProviders()

	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.apiKeyInput.Blur()
			return v, nil
		case keyEnter:
			return v, v.setLLMProvider(providers[v.selected], v.apiKeyInput.Value())
		default:
			var cmd tea.Cmd
			v.apiKeyInput, cmd = v.apiKeyInput.Update(msg)
			return v, cmd
		}
	}

	switch msg.String() {
	case keyUp, "k":
		v.moveUp()
	case keyDown, "j":
		v.moveDown(len(providers))
	case keyTab, keyEnter:
		provider := providers[v.selected]
		if provider.RequiresAPIKey() {
			v.focusedField = 1
			return v, v.apiKeyInput.Focus()
		}
		if msg.String() == keyEnter {
			return v, v.setLLMProvider(provider, "")
		}
	}
	return v, nil
}

func (v *View) moveUp() {
	if v.selected > 0 {
		v.selected--
	}
}

func (v *View) moveDown(items int) {
	if v.selected < items-1 {
		v.selected++
	}
}

func (v *View) resetAPIKey() {
	v.focusedField = 0
	v.apiKeyInput.SetValue("")
	v.apiKeyInput.Blur()
}

// Commands to update settings. They only call the service; state changes
// happen when SettingsSaved arrives.

func (v *View) setAskMode(mode domain.AskMode) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettingsService}
		}
		return messages.SettingsSaved{Err: svc.SetDefaultMode(mode)}
	}
}

func (v *View) setLLMProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	svc := v.settingsService
	model := domain.DefaultLLMModels()[provider]
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettingsService}
		}
		return messages.SettingsSaved{Err: svc.SetLLMProvider(provider, model, apiKey)}
	}
}

func (v *View) askModeIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, m := range askModes {
		if m == v.settings.Chat.DefaultMode {
			return i
		}
	}
	return 0
}

func (v *View) llmProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllLLMProviders() {
		if p == v.settings.LLM.Provider {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionAskMode:
		b.WriteString(v.renderAskModeSelect())
	case SectionLLM:
		b.WriteString(v.renderLLMSelect())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	items := []struct {
		label  string
		value  string
		status string
	}{
		{
			label: "Default Ask Mode",
			value: v.settings.Chat.DefaultMode.Description(),
		},
		{
			label:  "LLM Provider",
			value:  fmt.Sprintf("%s (%s)", v.settings.LLM.Provider.Description(), v.settings.LLM.Model),
			status: v.llmStatus(),
		},
	}

	for i, item := range items {
		b.WriteString(v.renderItem(i == v.selected, item.label+": "+item.value, item.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Read-only"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Embedding: %s at %s", domain.EmbeddingModel, v.settings.Embedding.BaseURL)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Index: %s (%s), %d chunks per question",
		v.settings.Index.Dir, v.settings.Index.Backend, v.settings.Index.TopK)))
	b.WriteString("\n\n")

	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderItem(selected bool, text, suffix string) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}
	line := indicator + text
	if suffix != "" {
		line += " " + suffix
	}
	if selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

func (v *View) llmStatus() string {
	if v.settings.LLM.IsConfigured() {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderAskModeSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Default Ask Mode"))
	b.WriteString("\n\n")

	for i, mode := range askModes {
		current := ""
		if mode == v.settings.Chat.DefaultMode {
			current = v.styles.Success.Render("(current)")
		}
		b.WriteString(v.renderItem(i == v.selected, mode.Description(), current))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderLLMSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select LLM Provider"))
	b.WriteString("\n\n")

	providers := domain.AllLLMProviders()
	defaults := domain.DefaultLLMModels()
	for i, provider := range providers {
		current := ""
		if provider == v.settings.LLM.Provider {
			current = v.styles.Success.Render("(current)")
		}
		b.WriteString(v.renderItem(i == v.selected && v.focusedField == 0, provider.Description(), current))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", defaults[provider])))
		b.WriteString("\n")
	}

	if providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.apiKeyInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back to chat")
	case SectionAskMode:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionLLM:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.err = nil
	v.resetAPIKey()
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Selected returns the selected row in the active section.
func (v *View) Selected() int {
	return v.selected
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
