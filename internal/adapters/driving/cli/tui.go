package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docqa.

The TUI shows the conversation for the current session and lets you ingest
a document and ask questions without leaving the terminal.

Controls:
  Enter    - Ask / Ingest
  Tab      - Toggle single-turn and conversational mode
  Ctrl+O   - Ingest a file
  Ctrl+L   - Clear the conversation
  Ctrl+S   - Settings
  F1       - Help
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	requires(tuiCmd, needsAI)
	rootCmd.AddCommand(tuiCmd)
}

// newTUIApp builds the TUI application from the installed services.
func newTUIApp() (*tui.App, error) {
	ports := &tui.Ports{
		QA:        qaService,
		Settings:  settingsService,
		SessionID: sessionID,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	watchPrompts(ctx)

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
