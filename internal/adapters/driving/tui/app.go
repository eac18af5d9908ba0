package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/views/chat"
)

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	keymap *keymap.KeyMap

	chatView *chat.View

	// builds delivers the result of a background index build.
	builds <-chan error

	width  int
	height int

	// ready indicates the terminal size is known.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		keymap:   keymap.DefaultKeyMap(),
		chatView: chat.NewView(styles.DefaultStyles(), ports.Answer, ports.Index),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// WithBuild sets the channel the background index build reports on.
func (a *App) WithBuild(builds <-chan error) *App {
	a.builds = builds
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("askdocs"),
		a.chatView.Init(),
		a.WaitForBuild(),
	)
}

// WaitForBuild returns a command that blocks until the background build
// finishes and reports a failure as messages.IndexBuildFailed. It is nil
// when no build channel is set.
func (a *App) WaitForBuild() tea.Cmd {
	if a.builds == nil {
		return nil
	}
	builds := a.builds
	return func() tea.Msg {
		if err := <-builds; err != nil {
			return messages.IndexBuildFailed{Err: err}
		}
		return nil
	}
}

// BuildErr returns the build failure reported to the app, if any.
func (a *App) BuildErr() error {
	return a.chatView.BuildErr()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	return a.chatView.View()
}

// SetDimensions sets the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
}

// Ready returns true once the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// Context returns the app's context.
func (a *App) Context() context.Context {
	return a.ctx
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}
