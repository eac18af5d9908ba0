// Package filesystem reads documents from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource  = (*Source)(nil)
	_ driven.WatchableSource = (*Source)(nil)
)

// DefaultDebounce collapses bursts of file events into one change.
const DefaultDebounce = 500 * time.Millisecond

// Source serves documents below a root directory.
type Source struct {
	root     string
	files    []string
	debounce time.Duration

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
	closed   bool
}

// Option configures a Source.
type Option func(*Source)

// WithFiles restricts the source to an explicit list of names relative to root.
func WithFiles(files []string) Option {
	return func(s *Source) {
		s.files = files
	}
}

// WithDebounce sets the watch debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New creates a filesystem source rooted at root, which must be a directory.
func New(root string, opts ...Option) (*Source, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: documents path is required", domain.ErrConfiguration)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: documents path %q: %w", domain.ErrConfiguration, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: documents path %q is not a directory", domain.ErrConfiguration, root)
	}

	s := &Source{root: root, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Type returns the backend name.
func (s *Source) Type() string {
	return string(domain.SourceFilesystem)
}

// List returns the configured files in order, or every supported file
// below the root sorted by name.
func (s *Source) List(ctx context.Context) ([]domain.DocumentRef, error) {
	if len(s.files) > 0 {
		refs := make([]domain.DocumentRef, 0, len(s.files))
		for _, name := range s.files {
			ref := domain.DocumentRef{Name: name, URI: filepath.Join(s.root, filepath.FromSlash(name))}
			if info, err := os.Stat(ref.URI); err == nil {
				ref.Size = info.Size()
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}

	var refs []domain.DocumentRef
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != s.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !domain.IsSupportedDocument(path) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		ref := domain.DocumentRef{Name: filepath.ToSlash(rel), URI: path}
		if info, err := d.Info(); err == nil {
			ref.Size = info.Size()
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Fetch reads a document from disk.
func (s *Source) Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uri := ref.URI
	if uri == "" {
		uri = filepath.Join(s.root, filepath.FromSlash(ref.Name))
	}

	content, err := os.ReadFile(uri)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDownload, ref.Name, err)
	}

	return &domain.RawDocument{
		Name:    ref.Name,
		URI:     uri,
		Content: content,
		Metadata: map[string]any{
			"source": ref.Name,
			"path":   uri,
		},
	}, nil
}

// Watch calls onChange after supported files below the root are created,
// written, removed or renamed. Bursts within the debounce interval produce
// one call. It blocks until ctx is cancelled.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		watcher.Close()
		return errors.New("source is closed")
	}
	s.watchers = append(s.watchers, watcher)
	s.mu.Unlock()
	defer watcher.Close()

	if err := addTree(watcher, s.root); err != nil {
		return fmt.Errorf("watch %s: %w", s.root, err)
	}
	logger.Debug("watching %s for document changes", s.root)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.relevant(watcher, event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", s.root, err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// relevant reports whether an event should trigger a rebuild. New
// directories are added to the watch as a side effect.
func (s *Source) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addTree(watcher, event.Name); err != nil {
				logger.Warn("watch %s: %v", event.Name, err)
			}
			return false
		}
	}

	if len(s.files) > 0 {
		rel, err := filepath.Rel(s.root, event.Name)
		if err != nil {
			return false
		}
		rel = filepath.ToSlash(rel)
		for _, name := range s.files {
			if name == rel {
				return true
			}
		}
		return false
	}
	return domain.IsSupportedDocument(event.Name)
}

// Close stops any running watchers. It is safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, w := range s.watchers {
		w.Close()
	}
	s.watchers = nil
	return nil
}

// addTree adds dir and every non-hidden subdirectory to the watcher.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// isHidden reports whether a file or directory name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
