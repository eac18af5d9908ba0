// Package github reads documents from a GitHub repository.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBytes caps a downloaded file.
	DefaultMaxBytes int64 = 50 << 20
)

// Config holds the repository settings.
type Config struct {
	// Repository is "owner/name".
	Repository string

	// Ref is a branch, tag or commit. Empty means the default branch.
	Ref string

	// Prefix restricts enumeration to a directory, e.g. "docs/".
	Prefix string
	Files  []string

	// Token is optional for public repositories.
	Token string

	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxBytes          int64
	UserAgent         string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
}

// Source reads files from one repository at one ref.
type Source struct {
	gh       *gh.Client
	owner    string
	repo     string
	ref      string
	prefix   string
	files    []string
	limiter  *ratelimit.Limiter
	maxBytes int64
}

// New creates a repository source.
func New(ctx context.Context, cfg Config) (*Source, error) {
	owner, repo, ok := strings.Cut(cfg.Repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("%w: github repository must be owner/name, got %q", domain.ErrConfiguration, cfg.Repository)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = cfg.Timeout
	}

	client := gh.NewClient(httpClient)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: github base URL: %w", domain.ErrConfiguration, err)
		}
		client.BaseURL = base
	}

	return &Source{
		gh:       client,
		owner:    owner,
		repo:     repo,
		ref:      cfg.Ref,
		prefix:   cfg.Prefix,
		files:    cfg.Files,
		limiter:  ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		maxBytes: cfg.MaxBytes,
	}, nil
}

// Type returns the backend name.
func (s *Source) Type() string {
	return string(domain.SourceGitHub)
}

// List returns the configured files, or every supported blob under the
// prefix at the ref, sorted by path.
func (s *Source) List(ctx context.Context) ([]domain.DocumentRef, error) {
	if len(s.files) > 0 {
		refs := make([]domain.DocumentRef, 0, len(s.files))
		for _, name := range s.files {
			refs = append(refs, domain.DocumentRef{Name: name, URI: s.fileURI(s.prefix + name)})
		}
		return refs, nil
	}

	ref, err := s.resolveRef(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	tree, resp, err := s.gh.Git.GetTree(ctx, s.owner, s.repo, ref, true)
	if err != nil {
		return nil, s.wrapError(resp, err, "get tree")
	}
	if tree.GetTruncated() {
		return nil, fmt.Errorf("%w: tree of %s/%s is too large to enumerate, list files explicitly",
			domain.ErrDownload, s.owner, s.repo)
	}

	var refs []domain.DocumentRef
	for _, entry := range tree.Entries {
		path := entry.GetPath()
		if entry.GetType() != "blob" || !strings.HasPrefix(path, s.prefix) || !domain.IsSupportedDocument(path) {
			continue
		}
		refs = append(refs, domain.DocumentRef{
			Name: strings.TrimPrefix(path, s.prefix),
			URI:  s.fileURI(path),
			Size: int64(entry.GetSize()),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Fetch reads one file. Small files come inline from the contents API;
// larger ones are downloaded.
func (s *Source) Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	path := s.prefix + ref.Name
	opts := &gh.RepositoryContentGetOptions{Ref: s.ref}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limit wait: %w", domain.ErrDownload, ref.Name, err)
	}
	file, dir, resp, err := s.gh.Repositories.GetContents(ctx, s.owner, s.repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.Name, s.wrapError(resp, err, "get contents"))
	}
	if file == nil || dir != nil {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrDownload, ref.Name)
	}

	var content []byte
	if file.Content != nil && file.GetEncoding() != "none" {
		decoded, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: decode content: %w", domain.ErrDownload, ref.Name, err)
		}
		content = []byte(decoded)
	} else {
		content, err = s.download(ctx, path, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref.Name, err)
		}
	}
	if int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s: file larger than %d bytes", domain.ErrDownload, ref.Name, s.maxBytes)
	}

	return &domain.RawDocument{
		Name:    ref.Name,
		URI:     s.fileURI(path),
		Content: content,
		Metadata: map[string]any{
			"source":   ref.Name,
			"owner":    s.owner,
			"repo":     s.repo,
			"path":     path,
			"sha":      file.GetSHA(),
			"html_url": file.GetHTMLURL(),
		},
	}, nil
}

func (s *Source) download(ctx context.Context, path string, opts *gh.RepositoryContentGetOptions) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrDownload, err)
	}
	rc, resp, err := s.gh.Repositories.DownloadContents(ctx, s.owner, s.repo, path, opts)
	if err != nil {
		return nil, s.wrapError(resp, err, "download contents")
	}
	defer rc.Close()
	if resp != nil && resp.Response != nil && resp.StatusCode != http.StatusOK {
		return nil, s.wrapError(resp, fmt.Errorf("status %d", resp.StatusCode), "download contents")
	}

	content, err := io.ReadAll(io.LimitReader(rc, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrDownload, err)
	}
	return content, nil
}

// Close is a no-op.
func (s *Source) Close() error {
	return nil
}

// resolveRef returns the configured ref or the repository's default branch.
func (s *Source) resolveRef(ctx context.Context) (string, error) {
	if s.ref != "" {
		return s.ref, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	repository, resp, err := s.gh.Repositories.Get(ctx, s.owner, s.repo)
	if err != nil {
		return "", s.wrapError(resp, err, "get repo")
	}
	return repository.GetDefaultBranch(), nil
}

// wrapError maps go-github failures onto the domain errors and records
// rate limit backoff.
func (s *Source) wrapError(resp *gh.Response, err error, operation string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		s.limiter.Backoff(time.Until(rateErr.Rate.Reset.Time))
		return fmt.Errorf("%w: %s: %w", domain.ErrDownload, operation, err)
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		s.limiter.Backoff(abuseErr.GetRetryAfter())
		return fmt.Errorf("%w: %s: %w", domain.ErrDownload, operation, err)
	}

	if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, operation)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrDownload, operation, err)
}

func (s *Source) fileURI(path string) string {
	return fmt.Sprintf("github://%s/%s/%s", s.owner, s.repo, path)
}
