package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, embedding endpoint, index location
and ask mode.

Environment variables (DOCQA_*, GOOGLE_API_KEY, CHROMA_DB_DIR) override the
saved values without changing them.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [single|chat]",
	Short: "Set the default ask mode",
	Long: `Set the ask mode used by new sessions.

Available modes:
  single - each question is answered on its own and the answer refined
  chat   - questions are answered with the conversation so far`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsMode,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding endpoint",
	Long: `Configure the Ollama endpoint that serves the ` + domain.EmbeddingModel + ` embedding model.
The model itself cannot be changed.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used to answer, refine and condense questions.`,
	RunE:  runSettingsLLM,
}

var settingsIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Configure the vector index",
	Long:  `Configure where the vector index lives and which store holds it.`,
	RunE:  runSettingsIndex,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsIndexCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.LLM.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d requests/minute\n", settings.LLM.RequestsPerMinute)
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Model: %s (%d dimensions)\n", domain.EmbeddingModel, domain.EmbeddingDimensions)
	cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	cmd.Printf("  Query cache: %d\n", settings.Embedding.CacheSize)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", settings.Index.Dir)
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	if settings.Index.Backend == domain.IndexBackendQdrant {
		cmd.Printf("  Qdrant: %s\n", settings.Index.QdrantAddr)
	}
	cmd.Printf("  Chunks per question: %d\n", settings.Index.TopK)
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Default mode: %s\n", settings.Chat.DefaultMode.Description())
	cmd.Printf("  Max turns: %d\n", settings.Chat.MaxTurns)
	cmd.Println()

	if settings.DataDir != "" {
		cmd.Printf("Data directory: %s\n\n", settings.DataDir)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docqa settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	cmd.Println("docqa Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Embedding Endpoint")
	cmd.Println("------------------------------------")
	if err := configureEmbedding(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Vector Index")
	cmd.Println("------------------------------")
	if err := configureIndex(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 4: Select Default Ask Mode")
	cmd.Println("-------------------------------")
	modes := []domain.AskMode{domain.AskModeSingleTurn, domain.AskModeConversational}
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(modes), 1)
	if err := settingsService.SetDefaultMode(modes[idx-1]); err != nil {
		return fmt.Errorf("failed to set ask mode: %w", err)
	}
	cmd.Printf("Set default mode to: %s\n\n", modes[idx-1].Description())

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	mode, ok := domain.ParseAskMode(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown mode %q (use single or chat)", domain.ErrInvalidInput, args[0])
	}
	if err := settingsService.SetDefaultMode(mode); err != nil {
		return fmt.Errorf("failed to set ask mode: %w", err)
	}

	cmd.Printf("Default ask mode set to: %s\n", mode.Description())
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureEmbedding(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsIndex(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureIndex(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureEmbedding(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Embedding model: %s\n", domain.EmbeddingModel)
	cmd.Printf("Enter Ollama URL [%s]: ", settings.Embedding.BaseURL)
	baseURL := readLine(reader)
	if baseURL == "" {
		baseURL = settings.Embedding.BaseURL
	}

	if err := settingsService.SetEmbeddingURL(baseURL); err != nil {
		return fmt.Errorf("failed to configure embedding endpoint: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		cmd.Printf("Make sure Ollama is running and the model is pulled: ollama pull %s\n", domain.EmbeddingModel)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding endpoint configured: %s\n\n", baseURL)
	return nil
}

func configureIndex(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Enter index directory [%s]: ", settings.Index.Dir)
	dir := readLine(reader)
	if dir == "" {
		dir = settings.Index.Dir
	}

	backends := []domain.IndexBackend{domain.IndexBackendSQLite, domain.IndexBackendQdrant, domain.IndexBackendMemory}
	cmd.Println("Select index backend")
	defaultIdx := 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
		if b == settings.Index.Backend {
			defaultIdx = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultIdx)
	backend := backends[parseChoice(readLine(reader), len(backends), defaultIdx)-1]

	if err := settingsService.SetIndex(dir, backend); err != nil {
		return fmt.Errorf("failed to configure index: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateIndexConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("index configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Index configured: %s (%s)\n\n", dir, backend)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal, otherwise a
// plain line from reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
