package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/httpserver"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the index and serve the web chat",
	Long: `Build the document index and start the HTTP server.

The server exposes the chat page at /, questions at POST /process_input,
a webhook at POST /wakeup and a health check at GET /health. Every route
except /health needs the X-API-KEY header; /wakeup takes WEBHOOK_KEY.

Start-up fails before listening if API_KEY is unset, the configuration is
invalid, or no document could be indexed.

Use --watch with a filesystem source to rebuild the index when documents
change. Questions keep being answered from the previous index until the
new one is ready.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServer is replaced in tests.
var runServer = func(ctx context.Context, server *httpserver.Server) error {
	return server.Run(ctx)
}

func init() {
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "rebuild the index when documents change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := settings.ValidateServer(); err != nil {
		return err
	}

	ctx := cmd.Context()
	c, stats, err := buildIndex(ctx, settings)
	if err != nil {
		return err
	}
	defer c.Close()

	server, err := httpserver.NewServer(
		&httpserver.Ports{Answer: c.Answer, Index: c.Index},
		serverConfig(settings.Server),
	)
	if err != nil {
		return err
	}

	if serveWatch {
		go watchSource(ctx, c.Source, c.Index)
	}

	cmd.Printf("askdocs %s serving %d documents (%d chunks) on http://%s\n",
		version, stats.Documents, stats.Chunks, settings.Server.Addr())
	return runServer(ctx, server)
}

func serverConfig(s domain.ServerSettings) httpserver.Config {
	return httpserver.Config{
		Addr:           s.Addr(),
		APIKey:         s.APIKey,
		WebhookKey:     s.WebhookKey,
		AllowedOrigin:  s.AllowedOrigin,
		RequestTimeout: time.Duration(s.RequestTimeoutSeconds) * time.Second,
	}
}

// watchSource rebuilds the index whenever src reports a change, until ctx
// is cancelled. A failed rebuild keeps the previous snapshot.
func watchSource(ctx context.Context, src driven.DocumentSource, index driving.IndexService) {
	watchable, ok := src.(driven.WatchableSource)
	if !ok {
		logger.Warn("--watch ignored: %s source cannot report changes", src.Type())
		return
	}

	err := watchable.Watch(ctx, func() {
		logger.Info("documents changed, rebuilding index")
		stats, err := index.Build(ctx)
		if err != nil {
			logger.Error("rebuild failed, still serving snapshot %s: %v", index.Stats().SnapshotID, err)
			return
		}
		logger.Info("rebuilt index %s: %d documents, %d chunks", stats.SnapshotID, stats.Documents, stats.Chunks)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watching documents: %v", err)
	}
}
