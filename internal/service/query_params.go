package service

import (
	"strings"

	"github.com/timmy/reelsearch/internal/lexicon"
)

// Provider filter keys and values produced by QueryInterpreter.
const (
	ParamOrientation = "orientation"
	ParamColor       = "color"
	ParamSize        = "size"

	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
	ColorBlack           = "black"
	SizeLarge            = "large"
)

// maxQueryTerms caps the provider query length.
const maxQueryTerms = 12

// QueryInterpreter separates structural hints (orientation, monochrome,
// quality) from the descriptive part of a prompt.
type QueryInterpreter struct {
	tokenizer Tokenizer
}

// NewQueryInterpreter creates a query interpreter.
func NewQueryInterpreter(tokenizer Tokenizer) *QueryInterpreter {
	if tokenizer == nil {
		tokenizer = NewTokenizer(TokenizerRich)
	}
	return &QueryInterpreter{tokenizer: tokenizer}
}

// Interpret returns the provider query for prompt and the filter parameters
// detected in it. Words that triggered a filter are left out of the query.
// The query is never empty: it falls back to a basic-stopword pass and then
// to the raw prompt.
func (q *QueryInterpreter) Interpret(prompt string) (string, map[string]string) {
	tokens := q.tokenizer.Tokenize(prompt)
	params := make(map[string]string)
	consumed := make(lexicon.Set)

	consume := func(term string) {
		for _, w := range lexicon.Words(term) {
			consumed[w] = struct{}{}
		}
	}

	if cue, ok := lexicon.FirstTerm(tokens, lexicon.PortraitCues); ok {
		params[ParamOrientation] = OrientationPortrait
		consume(cue)
	} else if cue, ok := lexicon.FirstTerm(tokens, lexicon.LandscapeCues); ok {
		params[ParamOrientation] = OrientationLandscape
		consume(cue)
	}

	if cue, ok := lexicon.FirstTerm(tokens, lexicon.MonochromeCues); ok {
		params[ParamColor] = ColorBlack
		consume(cue)
	}

	if cue, ok := lexicon.FirstTerm(tokens, lexicon.QualityCues); ok {
		params[ParamSize] = SizeLarge
		consume(cue)
		for _, w := range lexicon.QualityVocabulary {
			consume(w)
		}
	}

	keywords := selectKeywords(q.tokenizer, tokens, lexicon.VisualDescriptors, consumed, maxQueryTerms)
	if len(keywords) == 0 {
		keywords = basicKeywords(tokens, maxQueryTerms)
	}
	if len(keywords) == 0 {
		return prompt, params
	}
	return strings.Join(keywords, " "), params
}

// basicKeywords keeps every word that is not a basic stopword.
func basicKeywords(tokens []string, limit int) []string {
	var out []string
	for _, t := range tokens {
		if len(out) == limit {
			break
		}
		if hasLetter(t) && !lexicon.BasicStopwords.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
