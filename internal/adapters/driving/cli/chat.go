package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
)

const chatPrompt = "> "

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversation about the ingested document",
	Long: `Starts a line-based conversation. Each answer takes the earlier exchanges
of the session into account.

Commands:
  /history  show the conversation so far
  /clear    forget the conversation
  /quit     leave (also Ctrl+D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	requires(chatCmd, needsAI)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	sess, err := openSession(ctx, domain.AskModeConversational)
	if err != nil {
		return err
	}
	watchPrompts(ctx)

	cmd.Printf("Session %s. Type /quit to leave.\n", sess.ID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print(chatPrompt)
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := qaService.ClearHistory(ctx, sess); err != nil {
				cmd.Printf("Error: %v\n", err)
				continue
			}
			cmd.Println("Conversation cleared.")
			continue
		case "/history":
			turns, err := qaService.History(ctx, sess)
			if err != nil {
				cmd.Printf("Error: %v\n", err)
				continue
			}
			printTranscript(cmd, turns)
			continue
		}

		answer, _, err := qaService.AskConversational(ctx, sess, line)
		if err != nil {
			cmd.Println(services.UserMessage(err))
			continue
		}
		cmd.Println(answer.Text)
		cmd.Println()
	}
}

func printTranscript(cmd *cobra.Command, turns []domain.Turn) {
	if len(turns) == 0 {
		cmd.Println("No conversation yet.")
		return
	}
	for _, turn := range turns {
		cmd.Printf("%s: %s\n", turn.Role.Label(), turn.Content)
	}
}
