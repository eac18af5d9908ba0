// Package chunker splits document text into overlapping token windows.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = 350

// DefaultChunkOverlap is the default number of tokens shared by consecutive chunks.
const DefaultChunkOverlap = 150

// separator decides whether a cut between toks[e-1] and toks[e] lands on it.
type separator struct {
	name  string
	match func(text string, toks []Token, e int) bool
}

// separators are tried in order; the first that fits the window wins.
// When none fits, the window is cut at its maximum size.
var separators = []separator{
	{"paragraph", func(text string, toks []Token, e int) bool {
		return strings.Count(gap(text, toks, e), "\n") >= 2
	}},
	{"line", func(text string, toks []Token, e int) bool {
		return strings.Contains(gap(text, toks, e), "\n")
	}},
	{"sentence", func(text string, toks []Token, e int) bool {
		if gap(text, toks, e) == "" {
			return false
		}
		last := text[toks[e-1].Start:toks[e-1].End]
		return last == "." || last == "!" || last == "?"
	}},
	{"space", func(text string, toks []Token, e int) bool {
		return gap(text, toks, e) != ""
	}},
}

// gap returns the text between token e-1 and token e.
func gap(text string, toks []Token, e int) string {
	return text[toks[e-1].End:toks[e].Start]
}

// Processor splits document content into chunks of at most chunkSize tokens.
// Consecutive chunks of one document share exactly overlap tokens.
type Processor struct {
	chunkSize int
	overlap   int
	tokenizer Tokenizer
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithTokenizer replaces the default approximate tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		tokenizer: NewApproxTokenizer(0),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum chunk size in tokens.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the overlap between consecutive chunks in tokens.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits the document content into chunks.
func (p *Processor) Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := doc.Content
	toks := p.tokenizer.Tokenize(content)
	if len(toks) == 0 {
		// Empty or whitespace-only content produces no chunks
		return nil, nil
	}

	windows := p.windows(content, toks)
	chunks := make([]domain.Chunk, 0, len(windows))
	for i, w := range windows {
		startByte := toks[w.start].Start
		endByte := toks[w.end-1].End

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    content[startByte:endByte],
			Position:   i,
			Tokens:     w.end - w.start,
			Metadata: map[string]any{
				"source":       doc.Source,
				"tokens":       w.end - w.start,
				"start_offset": startByte,
				"end_offset":   endByte,
			},
		})
	}

	return chunks, nil
}

// window is a half-open range of token indexes.
type window struct {
	start int
	end   int
}

// windows lays out the token windows. Each window after the first starts
// overlap tokens before the end of its predecessor.
func (p *Processor) windows(text string, toks []Token) []window {
	n := len(toks)
	estimated := n/(p.chunkSize-p.overlap) + 1
	out := make([]window, 0, estimated)

	start := 0
	for {
		if n-start <= p.chunkSize {
			out = append(out, window{start: start, end: n})
			return out
		}
		end := p.cut(text, toks, start)
		out = append(out, window{start: start, end: end})
		start = end - p.overlap
	}
}

// cut picks the end of the window starting at start. Only ends that leave
// the next window at least half a stride of new tokens are considered, so a
// separator right after the overlap cannot produce a run of tiny chunks.
func (p *Processor) cut(text string, toks []Token, start int) int {
	hi := start + p.chunkSize
	minStep := (p.chunkSize - p.overlap) / 2
	if minStep < 1 {
		minStep = 1
	}
	lo := start + p.overlap + minStep
	if lo > hi {
		lo = hi
	}

	for _, sep := range separators {
		for e := hi; e >= lo; e-- {
			if sep.match(text, toks, e) {
				return e
			}
		}
	}
	return hi
}
