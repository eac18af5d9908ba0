package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive terminal chat",
	Long: `Launch an interactive chat with your documents in the terminal.

The index is built in the background; the status bar shows when it is
ready.

Controls:
  Enter       - Ask
  PgUp/PgDn   - Scroll the conversation
  Ctrl+S      - Show or hide sources
  Ctrl+L      - Clear the conversation
  Esc, Ctrl+C - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

// runProgram is replaced in tests.
var runProgram = func(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	c, err := newComponents(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer c.Close()

	// Stop an unfinished build before the services are closed.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := tui.NewApp(&tui.Ports{Answer: c.Answer, Index: c.Index})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Log lines would draw over the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	builds := make(chan error, 1)
	go func() {
		_, err := c.Index.Build(ctx)
		builds <- err
	}()
	app.WithContext(ctx).WithBuild(builds)

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if err := app.BuildErr(); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	return nil
}
