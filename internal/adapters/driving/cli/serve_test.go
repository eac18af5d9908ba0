package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/httpserver"
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// captureServer replaces runServer and records whether it was reached.
func captureServer(t *testing.T, err error) *bool {
	t.Helper()
	called := false
	original := runServer
	runServer = func(_ context.Context, server *httpserver.Server) error {
		called = true
		require.NotNil(t, server)
		return err
	}
	t.Cleanup(func() { runServer = original })
	return &called
}

func newServeComponents() (*components, *mockIndexService) {
	index := &mockIndexService{stats: domain.IndexStats{Documents: 3, Chunks: 12}}
	return &components{
		Source: &mockSource{},
		Index:  index,
		Answer: &mockAnswerService{answer: domain.Answer{Text: "ok"}},
	}, index
}

func TestServeCmd_HasWatchFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("watch")
	require.NotNil(t, flag)
	assert.Equal(t, "w", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestServeCmd_RequiresAPIKey(t *testing.T) {
	isolateEnv(t)
	c, index := newServeComponents()
	setupComponents(t, c)
	called := captureServer(t, nil)

	_, err := execute(t, "", "serve", "--config", writeConfig(t, ""), "--env-file", "")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "API_KEY")
	assert.Zero(t, index.Builds())
	assert.False(t, *called)
}

func TestServeCmd_BuildFailureStopsStartup(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_KEY", "secret")
	c, index := newServeComponents()
	index.err = domain.ErrNoDocuments
	setupComponents(t, c)
	called := captureServer(t, nil)

	_, err := execute(t, "", "serve", "--config", writeConfig(t, ""), "--env-file", "")

	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	assert.False(t, *called)
}

func TestServeCmd_Starts(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("PORT", "9090")
	c, index := newServeComponents()
	got := setupComponents(t, c)
	called := captureServer(t, nil)

	out, err := execute(t, "", "serve", "--config", writeConfig(t, ""), "--env-file", "")

	require.NoError(t, err)
	assert.True(t, *called)
	assert.Equal(t, 1, index.Builds())
	assert.Equal(t, "secret", got.Server.APIKey)
	assert.Contains(t, out, "serving 3 documents (12 chunks)")
	assert.Contains(t, out, "0.0.0.0:9090")
}

func TestServeCmd_ReturnsServerError(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_KEY", "secret")
	c, _ := newServeComponents()
	setupComponents(t, c)
	captureServer(t, errors.New("address in use"))

	_, err := execute(t, "", "serve", "--config", writeConfig(t, ""), "--env-file", "")

	assert.EqualError(t, err, "address in use")
}

func TestServerConfig(t *testing.T) {
	cfg := serverConfig(domain.ServerSettings{
		Host:                  "127.0.0.1",
		Port:                  10000,
		APIKey:                "a",
		WebhookKey:            "w",
		AllowedOrigin:         "https://docs.example.com",
		RequestTimeoutSeconds: 30,
	})

	assert.Equal(t, "127.0.0.1:10000", cfg.Addr)
	assert.Equal(t, "a", cfg.APIKey)
	assert.Equal(t, "w", cfg.WebhookKey)
	assert.Equal(t, "https://docs.example.com", cfg.AllowedOrigin)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestWatchSource_RebuildsOnChange(t *testing.T) {
	index := &mockIndexService{}
	src := &mockWatchableSource{changes: 2, err: context.Canceled}

	watchSource(context.Background(), src, index)

	assert.Equal(t, 2, index.Builds())
}

func TestWatchSource_FailedRebuildKeepsSnapshot(t *testing.T) {
	index := &mockIndexService{stats: domain.IndexStats{SnapshotID: "snap-1", Ready: true}, err: domain.ErrEmbedding}
	src := &mockWatchableSource{changes: 1}

	watchSource(context.Background(), src, index)

	assert.Equal(t, 1, index.Builds())
	assert.True(t, index.Ready())
	assert.Equal(t, "snap-1", index.Stats().SnapshotID)
}

func TestWatchSource_UnwatchableSource(t *testing.T) {
	index := &mockIndexService{}

	watchSource(context.Background(), &mockSource{}, index)

	assert.Zero(t, index.Builds())
}
