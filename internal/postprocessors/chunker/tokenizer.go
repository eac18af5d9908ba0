package chunker

import (
	"unicode"
	"unicode/utf8"
)

// DefaultMaxTokenRunes is how many letters or digits make up at most one token.
// Four runes per token is the usual estimate for BPE vocabularies on English text.
const DefaultMaxTokenRunes = 4

// Token is a byte span of the source text.
type Token struct {
	Start int
	End   int
}

// Tokenizer splits text into the units chunk sizes are measured in.
// Tokens must be returned in text order and must not overlap.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// ApproxTokenizer approximates a BPE tokenizer without a vocabulary.
// A run of letters and digits counts as one token per maxRunes runes,
// every other non-space rune is a token of its own, and whitespace
// only separates tokens.
type ApproxTokenizer struct {
	maxRunes int
}

// NewApproxTokenizer creates a tokenizer. maxRunes <= 0 uses DefaultMaxTokenRunes.
func NewApproxTokenizer(maxRunes int) *ApproxTokenizer {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxTokenRunes
	}
	return &ApproxTokenizer{maxRunes: maxRunes}
}

// Tokenize returns the token spans of text.
func (t *ApproxTokenizer) Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/t.maxRunes+1)

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch {
		case unicode.IsSpace(r):
			i += size

		case isWordRune(r):
			start := i
			runes := 0
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !isWordRune(r) {
					break
				}
				if runes == t.maxRunes {
					tokens = append(tokens, Token{Start: start, End: i})
					start = i
					runes = 0
				}
				i += size
				runes++
			}
			tokens = append(tokens, Token{Start: start, End: i})

		default:
			tokens = append(tokens, Token{Start: i, End: i + size})
			i += size
		}
	}

	return tokens
}

// Count returns the number of tokens in text.
func (t *ApproxTokenizer) Count(text string) int {
	return len(t.Tokenize(text))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
