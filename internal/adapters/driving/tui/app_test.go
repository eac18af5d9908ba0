package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Answer: &MockAnswerService{Answer: domain.Answer{Text: "25 days"}},
		Index:  &MockIndexService{stats: domain.IndexStats{Ready: true}},
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.False(t, app.Ready())
	assert.Equal(t, "Loading...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingAnswerService)
	assert.Nil(t, app)
}

func TestPorts_IndexIsOptional(t *testing.T) {
	ports := &Ports{Answer: &MockAnswerService{}}
	assert.NoError(t, ports.Validate())
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Same(t, app, result)
	assert.Equal(t, ctx, app.Context())
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Nil(t, cmd)
	assert.True(t, model.(*App).Ready())
	assert.Contains(t, app.View(), "askdocs")
}

func TestApp_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		app, _ := NewApp(newTestPorts())

		_, cmd := app.Update(k)

		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestApp_TypingQIsNotQuit(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Zero(t, app.Chat().Turns())
}

func TestApp_AskRoundTrip(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.SetDimensions(100, 30)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("leave?")})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	_, cmd = app.Update(cmd())
	require.NotNil(t, cmd)
	answer := cmd()
	require.IsType(t, messages.AnswerReceived{}, answer)

	app.Update(answer)
	assert.Equal(t, 1, app.Chat().Turns())
	assert.Contains(t, app.View(), "25 days")
}

func TestApp_WaitForBuild(t *testing.T) {
	t.Run("nil without a build channel", func(t *testing.T) {
		app, _ := NewApp(newTestPorts())
		assert.Nil(t, app.WaitForBuild())
	})

	t.Run("successful build sends nothing", func(t *testing.T) {
		builds := make(chan error, 1)
		builds <- nil
		app, _ := NewApp(newTestPorts())
		app.WithBuild(builds)

		assert.Nil(t, app.WaitForBuild()())
		assert.NoError(t, app.BuildErr())
	})

	t.Run("failed build shows in the status bar", func(t *testing.T) {
		builds := make(chan error, 1)
		builds <- domain.ErrNoDocuments
		app, _ := NewApp(newTestPorts())
		app.WithBuild(builds)
		app.SetDimensions(120, 30)

		msg := app.WaitForBuild()()
		require.IsType(t, messages.IndexBuildFailed{}, msg)
		app.Update(msg)

		assert.ErrorIs(t, app.BuildErr(), domain.ErrNoDocuments)
		assert.Equal(t, status.StateError, app.Chat().Status())
		assert.Contains(t, app.View(), "index build failed")
	})
}
