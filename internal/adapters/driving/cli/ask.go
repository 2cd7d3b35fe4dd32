package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
)

var (
	askMode    string
	askJSON    bool
	askContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested document",
	Long: `Answers a question from the document ingested in this session.

Modes:
  single - answer the question on its own, then refine the answer
  chat   - answer using the conversation so far and remember the exchange

Without --mode the session's mode is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	requires(askCmd, needsAI)
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "ask mode: single or chat")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askContext, "show-context", false, "print the retrieved chunks")
	rootCmd.AddCommand(askCmd)
}

// askResult is the JSON shape of an answer.
type askResult struct {
	Answer   string   `json:"answer"`
	Question string   `json:"question"`
	Mode     string   `json:"mode"`
	Context  []string `json:"context,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	query := strings.Join(args, " ")

	var mode domain.AskMode
	if askMode != "" {
		parsed, ok := domain.ParseAskMode(askMode)
		if !ok {
			return fmt.Errorf("%w: unknown mode %q (use single or chat)", domain.ErrInvalidInput, askMode)
		}
		mode = parsed
	}

	sess, err := openSession(ctx, mode)
	if err != nil {
		return err
	}

	answer, err := qaService.Ask(ctx, sess, query)
	if err != nil {
		// Recoverable failures are shown as the answer text.
		cmd.Println(services.UserMessage(err))
		return nil
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if askContext {
		printContext(cmd, answer.Context)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	result := askResult{
		Answer:   answer.Text,
		Question: answer.Question,
		Mode:     answer.Mode.String(),
	}
	for i := range answer.Context {
		result.Context = append(result.Context, answer.Context[i].Content)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printContext(cmd *cobra.Command, chunks []domain.Chunk) {
	if len(chunks) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Context:")
	for i := range chunks {
		cmd.Printf("  [%d] %s\n", i+1, snippet(chunks[i].Content, 160))
	}
}

// snippet collapses whitespace and truncates s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
