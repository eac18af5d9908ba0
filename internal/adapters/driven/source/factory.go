// Package source builds the configured document source backend.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/source/filesystem"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/source/gcs"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/source/github"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/source/httpstore"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// New creates the document source selected by cfg.Type. Missing
// credentials or locations fail with domain.ErrConfiguration before any
// network call. userAgent identifies outbound requests of remote backends.
func New(ctx context.Context, cfg domain.SourceSettings, userAgent string) (driven.DocumentSource, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Type {
	case domain.SourceFilesystem:
		return filesystem.New(cfg.Path, filesystem.WithFiles(cfg.Files))

	case domain.SourceHTTP:
		return httpstore.New(ctx, httpstore.Config{
			BaseURL:           cfg.BaseURL,
			Token:             cfg.Token,
			Files:             cfg.Files,
			Timeout:           timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			MaxBytes:          cfg.MaxBytes,
			UserAgent:         userAgent,
		})

	case domain.SourceGCS:
		return gcs.New(ctx, gcs.Config{
			Bucket:                cfg.Bucket,
			Prefix:                cfg.Prefix,
			Files:                 cfg.Files,
			Token:                 cfg.Token,
			UseDefaultCredentials: cfg.UseDefaultCredentials,
			RequestsPerSecond:     cfg.RequestsPerSecond,
			Burst:                 cfg.Burst,
			MaxBytes:              cfg.MaxBytes,
			UserAgent:             userAgent,
		})

	case domain.SourceGitHub:
		return github.New(ctx, github.Config{
			Repository:        cfg.Repository,
			Ref:               cfg.Ref,
			Prefix:            cfg.Prefix,
			Files:             cfg.Files,
			Token:             cfg.Token,
			Timeout:           timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			MaxBytes:          cfg.MaxBytes,
			UserAgent:         userAgent,
			BaseURL:           cfg.BaseURL,
		})

	default:
		return nil, fmt.Errorf("%w: unknown source type %q", domain.ErrConfiguration, cfg.Type)
	}
}
