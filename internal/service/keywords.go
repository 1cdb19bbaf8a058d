package service

import (
	"strings"

	"github.com/timmy/reelsearch/internal/lexicon"
)

// minKeywordLength drops very short words such as "of" or "is".
const minKeywordLength = 3

// KeywordExtractor turns a free-text prompt into a concise search query.
type KeywordExtractor struct {
	tokenizer Tokenizer
}

// NewKeywordExtractor creates a keyword extractor.
// Parameters:
//   - tokenizer: tokenizer strategy; nil selects the rich tokenizer.
// Returns:
//   - *KeywordExtractor: initialized extractor.
func NewKeywordExtractor(tokenizer Tokenizer) *KeywordExtractor {
	if tokenizer == nil {
		tokenizer = NewTokenizer(TokenizerRich)
	}
	return &KeywordExtractor{tokenizer: tokenizer}
}

// Extract returns up to maxKeywords space-separated keywords from prompt.
// Important modifiers survive stopword filtering and are preferred when the
// keyword list has to be truncated. A non-positive maxKeywords disables
// truncation. When nothing survives, the prompt is returned unchanged.
func (e *KeywordExtractor) Extract(prompt string, maxKeywords int) string {
	keywords := selectKeywords(e.tokenizer, e.tokenizer.Tokenize(prompt), lexicon.ImportantModifiers, nil, maxKeywords)
	if len(keywords) == 0 {
		return prompt
	}
	return strings.Join(keywords, " ")
}

// selectKeywords filters tokens down to meaningful keywords.
// A token is kept when it is long enough, contains a letter, is not
// excluded, and is either allow-listed or not a stopword. Duplicates are
// dropped. When more than limit survive, allow-listed words are chosen
// first and the rest fill the remaining slots; the output keeps prompt order.
func selectKeywords(tok Tokenizer, tokens []string, allow lexicon.Set, exclude lexicon.Set, limit int) []string {
	var kept []string
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if seen[t] || len(t) < minKeywordLength || !hasLetter(t) || exclude.Has(t) {
			continue
		}
		if !allow.Has(t) && (tok.IsStopword(t) || lexicon.DomainStopwords.Has(t)) {
			continue
		}
		seen[t] = true
		kept = append(kept, t)
	}

	if limit <= 0 || len(kept) <= limit {
		return kept
	}

	chosen := make(map[int]bool, limit)
	for i, t := range kept {
		if len(chosen) == limit {
			break
		}
		if allow.Has(t) {
			chosen[i] = true
		}
	}
	for i := range kept {
		if len(chosen) == limit {
			break
		}
		chosen[i] = true
	}

	out := make([]string, 0, limit)
	for i, t := range kept {
		if chosen[i] {
			out = append(out, t)
		}
	}
	return out
}
