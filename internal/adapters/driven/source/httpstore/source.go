// Package httpstore fetches documents from an HTTP object store that
// serves GET {base_url}/{name} behind a bearer token.
package httpstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

const (
	// DefaultTimeout bounds a single download.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBytes caps a response body.
	DefaultMaxBytes int64 = 50 << 20

	// DefaultUserAgent identifies outbound requests.
	DefaultUserAgent = "askdocs"
)

// ErrTooLarge is returned when a document exceeds MaxBytes.
var ErrTooLarge = errors.New("document exceeds size limit")

// Config holds the HTTP store settings.
type Config struct {
	BaseURL           string
	Token             string
	Files             []string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxBytes          int64
	UserAgent         string
}

// Source downloads the configured files from an HTTP store.
type Source struct {
	base      *url.URL
	files     []string
	client    *http.Client
	limiter   *ratelimit.Limiter
	maxBytes  int64
	userAgent string
}

// New creates an HTTP store source. The token and base URL are checked
// here so that a misconfiguration fails before any request is made.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: http source requires STORE_TOKEN", domain.ErrConfiguration)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: http source requires a valid base URL, got %q", domain.ErrConfiguration, cfg.BaseURL)
	}
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("%w: http source requires a file list", domain.ErrConfiguration)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = cfg.Timeout

	return &Source{
		base:      base,
		files:     cfg.Files,
		client:    client,
		limiter:   ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
	}, nil
}

// Type returns the backend name.
func (s *Source) Type() string {
	return string(domain.SourceHTTP)
}

// List returns the configured files in configuration order.
func (s *Source) List(_ context.Context) ([]domain.DocumentRef, error) {
	refs := make([]domain.DocumentRef, 0, len(s.files))
	for _, name := range s.files {
		refs = append(refs, domain.DocumentRef{Name: name, URI: s.objectURL(name)})
	}
	return refs, nil
}

// Fetch downloads one document.
func (s *Source) Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limit wait: %w", domain.ErrDownload, ref.Name, err)
	}

	uri := ref.URI
	if uri == "" {
		uri = s.objectURL(ref.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: create request: %w", domain.ErrDownload, ref.Name, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: send request: %w", domain.ErrDownload, ref.Name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref.Name)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		s.limiter.BackoffFromResponse(resp)
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrDownload, ref.Name, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", domain.ErrDownload, ref.Name, err)
	}
	if int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s: %w (%d bytes)", domain.ErrDownload, ref.Name, ErrTooLarge, s.maxBytes)
	}

	metadata := map[string]any{
		"source": ref.Name,
		"url":    uri,
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		metadata["etag"] = etag
	}

	return &domain.RawDocument{
		Name:     ref.Name,
		URI:      uri,
		MIMEType: contentType(resp.Header.Get("Content-Type")),
		Content:  content,
		Metadata: metadata,
	}, nil
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Source) objectURL(name string) string {
	segments := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.base.String() + "/" + strings.Join(segments, "/")
}

// contentType keeps a specific server-declared type and drops generic ones
// so that detection by extension applies.
func contentType(header string) string {
	if i := strings.IndexByte(header, ';'); i >= 0 {
		header = header[:i]
	}
	header = strings.TrimSpace(header)
	switch header {
	case "", "application/octet-stream", "binary/octet-stream":
		return ""
	}
	return header
}
