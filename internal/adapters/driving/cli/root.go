// Package cli provides the askdocs command line.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Answer questions from your documents",
	Long: `askdocs indexes a folder or object store of PDF, DOCX and TXT documents
and answers questions about them with a language model.

Start the web chat with 'askdocs serve', ask one question with
'askdocs ask', or open the terminal chat with 'askdocs chat'.

Settings are read from ~/.askdocs/config.toml (or --config) and the
environment. Run 'askdocs config init' to write a starting file.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"settings file, .toml or .yaml (default ~/.askdocs/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to read (empty to disable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
