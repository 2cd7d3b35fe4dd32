package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docqa version %s\n", version)
		if verbose {
			cmd.Printf("  go:        %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			cmd.Printf("  embedding: %s (%d dimensions)\n", domain.EmbeddingModel, domain.EmbeddingDimensions)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
