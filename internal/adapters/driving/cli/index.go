package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index and report what was indexed",
	Long: `Load, chunk and embed every document once and print the result.

Nothing is kept after the command exits apart from cached embeddings, so
this is mainly useful for checking the source and warming the cache.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output stats as JSON")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	c, stats, err := buildIndex(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer c.Close()

	if indexJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	outputStats(cmd, stats)
	return nil
}

func outputStats(cmd *cobra.Command, stats domain.IndexStats) {
	cmd.Println("Index")
	cmd.Println("=====")
	cmd.Printf("  Snapshot:   %s\n", stats.SnapshotID)
	cmd.Printf("  Documents:  %d\n", stats.Documents)
	cmd.Printf("  Chunks:     %d\n", stats.Chunks)
	if stats.Skipped > 0 {
		cmd.Printf("  Skipped:    %d\n", stats.Skipped)
	}
	cmd.Printf("  Model:      %s (%d dimensions)\n", stats.Model, stats.Dimensions)
	cmd.Printf("  Built in:   %s\n", stats.Duration.Round(time.Millisecond))
}
