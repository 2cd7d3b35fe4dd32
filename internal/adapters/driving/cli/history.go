package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation of the current session",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the conversation of the current session",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the conversation of the current session",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	requires(historyCmd, needsStore)
	requires(historyShowCmd, needsStore)
	requires(historyClearCmd, needsStore)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryShow(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	sess, err := openSession(ctx, "")
	if err != nil {
		return err
	}

	turns, err := qaService.History(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	printTranscript(cmd, turns)
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	sess, err := openSession(ctx, "")
	if err != nil {
		return err
	}

	if err := qaService.ClearHistory(ctx, sess); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Printf("Cleared conversation for session %s.\n", sess.ID)
	return nil
}
