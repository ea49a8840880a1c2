package bm25s

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	snowballeng "github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZATION: Turning Text Into Terms
// ═══════════════════════════════════════════════════════════════════════════════
// The index never looks at raw text. Everything goes through a Tokenizer first,
// for documents AND for queries, so both sides speak the same vocabulary.
//
// The index only relies on two properties of a tokenizer:
//   1. Determinism: the same text always produces the same terms
//   2. Finiteness:  the term sequence ends
//
// Any function with those properties can be plugged in with WithTokenizer.
//
// DEFAULT PIPELINE (Analyzer):
// ----------------------------
//   "The Quick Brown Foxes!"
//     → NFKC normalize   → "The Quick Brown Foxes!"
//     → UAX#29 words     → ["The", "Quick", "Brown", "Foxes"]
//     → lowercase        → ["the", "quick", "brown", "foxes"]
//     → stopwords        → ["quick", "brown", "foxes"]
//     → length filter    → ["quick", "brown", "foxes"]
//     → snowball stem    → ["quick", "brown", "fox"]
// ═══════════════════════════════════════════════════════════════════════════════

// Tokenizer maps text to a sequence of normalized terms.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// TokenizerFunc adapts an ordinary function to the Tokenizer interface.
type TokenizerFunc func(text string) ([]string, error)

// Tokenize calls f(text).
func (f TokenizerFunc) Tokenize(text string) ([]string, error) {
	return f(text)
}

// FieldsTokenizer lowercases text and splits it on whitespace. No stopwords,
// no stemming: every whitespace-separated token counts.
var FieldsTokenizer Tokenizer = TokenizerFunc(func(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidInput)
	}
	return strings.Fields(strings.ToLower(text)), nil
})

// AnalyzerConfig controls the default analysis pipeline.
type AnalyzerConfig struct {
	MinTokenLength  int  `yaml:"min_token_length"` // Minimum token length in runes (default: 2)
	EnableStemming  bool `yaml:"stemming"`         // Apply snowball English stemming (default: true)
	EnableStopwords bool `yaml:"stopwords"`        // Drop English stopwords (default: true)
}

// DefaultAnalyzerConfig returns the standard analysis settings.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Analyzer is the default Tokenizer.
type Analyzer struct {
	config AnalyzerConfig
}

// NewAnalyzer creates an analyzer with the given settings.
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	return &Analyzer{config: config}
}

// Tokenize runs text through the analysis pipeline.
//
// Text that is not valid UTF-8 cannot be decoded and is rejected with
// ErrInvalidInput. Empty text, or text made only of punctuation and
// stopwords, is valid and yields zero terms.
func (a *Analyzer) Tokenize(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidInput)
	}

	tokens := segment(norm.NFKC.String(text))
	tokens = lowercaseFilter(tokens)

	if a.config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, a.config.MinTokenLength)

	if a.config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens, nil
}

// segment splits text on UAX#29 word boundaries and keeps only segments
// that carry a letter or a digit. Whitespace and punctuation runs come back
// from the segmenter as their own segments, so they are dropped here.
func segment(text string) []string {
	var tokens []string

	iter := words.FromString(text)
	for iter.Next() {
		token := iter.Value()
		if isWordToken(token) {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

func isWordToken(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func lowercaseFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = strings.ToLower(token)
	}
	return r
}

func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}
