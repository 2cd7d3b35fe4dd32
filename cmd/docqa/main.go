// Command docqa answers questions about a document from the terminal, a TUI
// or an MCP client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/uploads"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/loaders"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := env.LoadDotEnv(); err != nil {
		return err
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetOverlay(env.New())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	db, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer db.Close()

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	// AI adapters are pinged when built, so only commands that ask or ingest
	// build them.
	newQA := func(_ context.Context, withAI bool) (driving.DocumentQA, func(), error) {
		adapters := &ai.InitResult{}
		var err error
		if withAI {
			adapters, err = ai.Init(settings)
		} else {
			adapters.VectorStore, err = ai.CreateVectorStore(&settings.Index)
		}
		if err != nil {
			return nil, nil, err
		}

		qa := services.NewOrchestrator(services.OrchestratorConfig{
			Stager:        uploads.NewStager(settings.DataDir),
			Loaders:       loaders.Default(),
			Splitter:      postprocessors.Default(domain.DefaultChunkSize, domain.DefaultChunkOverlap),
			Index:         services.NewIndexStore(adapters.VectorStore, adapters.EmbeddingService),
			LLM:           adapters.LLMService,
			Prompts:       prompts,
			Conversations: db.ConversationStore(),
			Sessions:      db.SessionStore(),
			IndexDir:      settings.Index.Dir,
			TopK:          settings.Index.TopK,
			MaxTurns:      settings.Chat.MaxTurns,
		})
		return qa, adapters.Close, nil
	}

	cli.SetServices(nil, settingsService)
	cli.SetQAFactory(newQA)
	cli.SetPromptWatcher(prompts.Watch)
	cli.SetVersion(version)

	return cli.Execute(ctx)
}
