package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document",
	Long: `Loads a document, splits it into chunks and stores their embeddings in the
session's vector index. Later questions in the same session are answered
from this document.

Supported formats: .pdf, .docx, .html, .htm, .md, .markdown, .txt`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	requires(ingestCmd, needsAI)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	path := args[0]

	sess, err := openSession(ctx, "")
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	report, err := qaService.Ingest(ctx, sess, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s\n", filepath.Base(path))
	cmd.Printf("  Documents: %d\n", report.Documents)
	cmd.Printf("  Chunks:    %d\n", report.Chunks)
	cmd.Printf("  Stored:    %d\n", report.Stored)
	for _, w := range report.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
	if !report.Indexed() {
		cmd.Println("Some chunks were not indexed; answers may miss parts of the document.")
	}
	return nil
}
