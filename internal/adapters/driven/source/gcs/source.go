// Package gcs reads documents from a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// DefaultMaxBytes caps a downloaded object.
const DefaultMaxBytes int64 = 50 << 20

// Config holds the bucket settings.
type Config struct {
	Bucket string
	Prefix string
	Files  []string

	// Token is a bearer access token. When empty, UseDefaultCredentials
	// must be set and application default credentials are used.
	Token                 string
	UseDefaultCredentials bool

	RequestsPerSecond float64
	Burst             int
	MaxBytes          int64
	UserAgent         string

	// ClientOptions are appended after the credential options.
	ClientOptions []option.ClientOption
}

// Source lists and downloads objects from one bucket.
type Source struct {
	svc      *storage.Service
	bucket   string
	prefix   string
	files    []string
	limiter  *ratelimit.Limiter
	maxBytes int64
}

// New creates a bucket source.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: gcs source requires a bucket", domain.ErrConfiguration)
	}

	var opts []option.ClientOption
	switch {
	case cfg.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		opts = append(opts, option.WithTokenSource(ts))
	case cfg.UseDefaultCredentials:
		opts = append(opts, option.WithScopes(storage.DevstorageReadOnlyScope))
	default:
		return nil, fmt.Errorf("%w: gcs source requires STORE_TOKEN or default credentials", domain.ErrConfiguration)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithUserAgent(cfg.UserAgent))
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create storage client: %w", domain.ErrConfiguration, err)
	}

	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	return &Source{
		svc:      svc,
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		files:    cfg.Files,
		limiter:  ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		maxBytes: cfg.MaxBytes,
	}, nil
}

// Type returns the backend name.
func (s *Source) Type() string {
	return string(domain.SourceGCS)
}

// List returns the configured objects, or every supported object under
// the prefix sorted by name.
func (s *Source) List(ctx context.Context) ([]domain.DocumentRef, error) {
	if len(s.files) > 0 {
		refs := make([]domain.DocumentRef, 0, len(s.files))
		for _, name := range s.files {
			refs = append(refs, domain.DocumentRef{Name: name, URI: s.objectURI(s.prefix + name)})
		}
		return refs, nil
	}

	var refs []domain.DocumentRef
	call := s.svc.Objects.List(s.bucket).Prefix(s.prefix).Fields("nextPageToken", "items(name,size)")
	err := call.Pages(ctx, func(page *storage.Objects) error {
		for _, obj := range page.Items {
			if strings.HasSuffix(obj.Name, "/") || !domain.IsSupportedDocument(obj.Name) {
				continue
			}
			refs = append(refs, domain.DocumentRef{
				Name: strings.TrimPrefix(obj.Name, s.prefix),
				URI:  s.objectURI(obj.Name),
				Size: int64(obj.Size),
			})
		}
		return s.limiter.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list gs://%s/%s: %w", domain.ErrDownload, s.bucket, s.prefix, err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Fetch downloads one object.
func (s *Source) Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limit wait: %w", domain.ErrDownload, ref.Name, err)
	}

	object := s.prefix + ref.Name
	resp, err := s.svc.Objects.Get(s.bucket, object).Context(ctx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Code == http.StatusNotFound {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref.Name)
			}
			if apiErr.Code == http.StatusTooManyRequests {
				s.limiter.Backoff(ratelimit.RetryAfter(apiErr.Header.Get("Retry-After")))
			}
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDownload, ref.Name, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", domain.ErrDownload, ref.Name, err)
	}
	if int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s: object larger than %d bytes", domain.ErrDownload, ref.Name, s.maxBytes)
	}

	return &domain.RawDocument{
		Name:    ref.Name,
		URI:     s.objectURI(object),
		Content: content,
		Metadata: map[string]any{
			"source": ref.Name,
			"bucket": s.bucket,
			"object": object,
		},
	}, nil
}

// Close is a no-op; the storage client holds no resources of its own.
func (s *Source) Close() error {
	return nil
}

func (s *Source) objectURI(object string) string {
	return "gs://" + s.bucket + "/" + object
}
