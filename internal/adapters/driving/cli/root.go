// Package cli implements the docqa command line on top of cobra.
//
// Commands reach the core through package-level driving ports. The
// composition root installs them with SetServices, or installs a QAFactory so
// the question-answering service is only built for commands that need it.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultSessionID is the session used when --session is not given, so
// successive commands share one document and one conversation.
const DefaultSessionID = "default"

var version = "dev"

// annotationNeeds marks the commands that use the question-answering service.
const annotationNeeds = "docqa/needs"

// Values of annotationNeeds.
const (
	needsStore = "store" // stored sessions and conversations only
	needsAI    = "ai"    // the full pipeline, including LLM and embeddings
)

// QAFactory builds the question-answering service. withAI is false for
// commands that only read or clear stored conversations; no LLM or embedding
// service is contacted then. The returned function releases the service.
type QAFactory func(ctx context.Context, withAI bool) (driving.DocumentQA, func(), error)

var (
	qaService       driving.DocumentQA
	settingsService driving.SettingsService

	qaFactory QAFactory
	qaRelease func()

	// promptWatcher reloads prompt templates while long-running commands are open.
	promptWatcher func(ctx context.Context) error
)

var (
	verbose   bool
	sessionID string
)

var errNotConfigured = errors.New("question answering service not configured")

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about a document",
	Long: `docqa ingests a document (PDF, DOCX, HTML, Markdown or plain text) into a
local vector index and answers questions about it with an LLM.

Questions can be asked one at a time or as a conversation that remembers
earlier exchanges.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return prepareQA(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", DefaultSessionID, "session id")
}

// SetServices installs the core services used by every command.
func SetServices(qa driving.DocumentQA, settings driving.SettingsService) {
	qaService = qa
	settingsService = settings
}

// SetQAFactory installs the builder used for commands that need the
// question-answering service when none was set with SetServices.
func SetQAFactory(f QAFactory) {
	qaFactory = f
}

// SetPromptWatcher installs the function chat, tui and mcp use to pick up
// prompt edits without a restart.
func SetPromptWatcher(fn func(ctx context.Context) error) {
	promptWatcher = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer releaseQA()
	return rootCmd.ExecuteContext(ctx)
}

// requires marks cmd as needing the question-answering service.
func requires(cmd *cobra.Command, needs string) {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[annotationNeeds] = needs
}

// prepareQA builds the question-answering service for cmd if it needs one
// and none is installed yet.
func prepareQA(cmd *cobra.Command) error {
	needs := cmd.Annotations[annotationNeeds]
	if needs == "" || qaService != nil || qaFactory == nil {
		return nil
	}

	qa, release, err := qaFactory(commandContext(cmd), needs == needsAI)
	if err != nil {
		return err
	}
	if release == nil {
		release = func() {}
	}
	qaService, qaRelease = qa, release
	return nil
}

// releaseQA releases a service built by prepareQA.
func releaseQA() {
	if qaRelease == nil {
		return
	}
	qaRelease()
	qaService, qaRelease = nil, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openSession restores the session named by --session.
func openSession(ctx context.Context, mode domain.AskMode) (*domain.Session, error) {
	if qaService == nil {
		return nil, errNotConfigured
	}
	return qaService.Session(ctx, sessionID, mode)
}

// watchPrompts starts the prompt watcher if one is installed. Failures are
// logged; edits are then only picked up on the next run.
func watchPrompts(ctx context.Context) {
	if promptWatcher == nil {
		return
	}
	if err := promptWatcher(ctx); err != nil {
		logger.Warn("prompt watch disabled: %v", err)
	}
}
