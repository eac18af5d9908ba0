package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// DocumentLoader produces the documents an index is built from.
type DocumentLoader interface {
	Load(ctx context.Context) ([]domain.Document, domain.LoadReport, error)
}

// Ensure Loader implements the interface.
var _ DocumentLoader = (*Loader)(nil)

// Loader fetches every document a source lists and extracts its text.
type Loader struct {
	source   driven.DocumentSource
	registry driven.NormaliserRegistry
	policy   domain.FailurePolicy
}

// NewLoader creates a loader. An empty policy means domain.FailureSkip.
func NewLoader(source driven.DocumentSource, registry driven.NormaliserRegistry, policy domain.FailurePolicy) *Loader {
	if policy == "" {
		policy = domain.FailureSkip
	}
	return &Loader{
		source:   source,
		registry: registry,
		policy:   policy,
	}
}

// Load returns the documents that produced text, in listing order.
// Files that fail to fetch or extract are skipped and reported, unless the
// policy is domain.FailureAbort. Files without text are always skipped.
// Fails with domain.ErrNoDocuments when nothing could be loaded.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, domain.LoadReport, error) {
	var report domain.LoadReport

	logger.Section("Loading documents")
	refs, err := l.source.List(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("list %s source: %w", l.source.Type(), err)
	}
	logger.Debug("%s source listed %d documents", l.source.Type(), len(refs))

	docs := make([]domain.Document, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		doc, err := l.loadOne(ctx, ref)
		if err != nil {
			if l.policy == domain.FailureAbort && !errors.Is(err, errNoText) {
				return nil, report, fmt.Errorf("load %s: %w", ref.Name, err)
			}
			logger.Warn("skipping %s: %v", ref.Name, err)
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Name: ref.Name, Reason: err.Error()})
			continue
		}

		docs = append(docs, *doc)
		report.Loaded = append(report.Loaded, ref.Name)
	}

	if len(docs) == 0 {
		return nil, report, fmt.Errorf("%w: %d listed, %d skipped", domain.ErrNoDocuments, len(refs), len(report.Skipped))
	}

	logger.Info("Loaded %d documents (%s), skipped %d", len(docs), formatCounts(docs), len(report.Skipped))
	return docs, report, nil
}

var errNoText = errors.New("no extractable text")

func (l *Loader) loadOne(ctx context.Context, ref domain.DocumentRef) (*domain.Document, error) {
	raw, err := l.source.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if raw.Name == "" {
		raw.Name = ref.Name
	}

	doc, err := l.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, errNoText
	}

	doc.Source = ref.Name
	if doc.URI == "" {
		doc.URI = ref.URI
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["source"] = ref.Name
	return doc, nil
}

// formatCounts renders per-format document counts, e.g. "2 pdf, 1 text".
func formatCounts(docs []domain.Document) string {
	counts := make(map[string]int)
	for i := range docs {
		format, _ := docs[i].Metadata["format"].(string)
		if format == "" {
			format = "other"
		}
		counts[format]++
	}

	formats := make([]string, 0, len(counts))
	for f := range counts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = fmt.Sprintf("%d %s", counts[f], f)
	}
	return strings.Join(parts, ", ")
}
