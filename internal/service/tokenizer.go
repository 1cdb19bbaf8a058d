package service

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/timmy/reelsearch/internal/lexicon"
	"github.com/timmy/reelsearch/internal/logger"
)

// Tokenizer kinds accepted by NewTokenizer.
const (
	TokenizerRich  = "rich"
	TokenizerNaive = "naive"
)

// Tokenizer splits prompts into lowercase word tokens and knows which of
// them carry no meaning on their own.
type Tokenizer interface {
	// Tokenize returns the prompt's words in order, punctuation removed.
	Tokenize(text string) []string
	// IsStopword reports whether a token is a general-language stopword.
	IsStopword(token string) bool
	// Name identifies the implementation.
	Name() string
}

// NewTokenizer returns the tokenizer for kind. The rich tokenizer is used
// unless the naive one is requested or the rich resources fail to load.
func NewTokenizer(kind string) Tokenizer {
	if kind == TokenizerNaive {
		return NewNaiveTokenizer()
	}
	rich, err := NewRichTokenizer()
	if err != nil {
		logger.GetDefault().WithField(logger.FieldComponent, "tokenizer").
			Warnf("Rich tokenizer unavailable, falling back to naive: %v", err)
		return NewNaiveTokenizer()
	}
	return rich
}

// normalize folds compatibility forms and case, then blanks out every rune
// that is not a letter or digit. Casers are stateful, so one is built per call.
func normalize(text string) string {
	text = cases.Lower(language.English).String(norm.NFKC.String(text))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, text)
}

// RichTokenizer segments text with bleve's Unicode word segmenter and
// filters with bleve's English stopword list.
type RichTokenizer struct {
	segmenter analysis.Tokenizer
	stopwords analysis.TokenMap
}

// NewRichTokenizer loads the segmenter and stopword resources.
func NewRichTokenizer() (*RichTokenizer, error) {
	stop := analysis.NewTokenMap()
	if err := stop.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, err
	}
	return &RichTokenizer{
		segmenter: bleveunicode.NewUnicodeTokenizer(),
		stopwords: stop,
	}, nil
}

// Tokenize implements Tokenizer.
func (t *RichTokenizer) Tokenize(text string) []string {
	stream := t.segmenter.Tokenize([]byte(normalize(text)))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		if term := strings.TrimSpace(string(tok.Term)); term != "" {
			tokens = append(tokens, term)
		}
	}
	return tokens
}

// IsStopword implements Tokenizer.
func (t *RichTokenizer) IsStopword(token string) bool {
	_, ok := t.stopwords[token]
	return ok
}

// Name implements Tokenizer.
func (t *RichTokenizer) Name() string { return TokenizerRich }

// NaiveTokenizer splits on whitespace and uses the built-in stopword list.
type NaiveTokenizer struct{}

// NewNaiveTokenizer returns the whitespace tokenizer.
func NewNaiveTokenizer() *NaiveTokenizer { return &NaiveTokenizer{} }

// Tokenize implements Tokenizer.
func (NaiveTokenizer) Tokenize(text string) []string {
	return strings.Fields(normalize(text))
}

// IsStopword implements Tokenizer.
func (NaiveTokenizer) IsStopword(token string) bool {
	return lexicon.FallbackStopwords.Has(token)
}

// Name implements Tokenizer.
func (NaiveTokenizer) Name() string { return TokenizerNaive }

// hasLetter reports whether s contains at least one letter.
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
