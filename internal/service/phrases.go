package service

import (
	"strings"

	"github.com/timmy/reelsearch/internal/lexicon"
)

const (
	// maxMinedPhrases bounds the phrase list returned by Mine.
	maxMinedPhrases = 8
	// sparsePhraseCount is the size below which generic bigrams pad the list.
	sparsePhraseCount = 3
	// maxSubjectPhrases bounds the subject nouns added to the list.
	maxSubjectPhrases = 4
	// minFallbackWordLength selects meaningful raw words for fallbacks.
	minFallbackWordLength = 4
)

// PhraseMiner derives narrower search phrases from a prompt for use when
// the primary query under-returns.
type PhraseMiner struct {
	tokenizer  Tokenizer
	adjectives [][]string
	priority   [][]string
}

// NewPhraseMiner creates a phrase miner.
func NewPhraseMiner(tokenizer Tokenizer) *PhraseMiner {
	if tokenizer == nil {
		tokenizer = NewTokenizer(TokenizerRich)
	}

	adjectives := make([][]string, 0, len(lexicon.VisualAdjectives))
	for _, a := range lexicon.VisualAdjectives {
		adjectives = append(adjectives, lexicon.Words(a))
	}

	// Multi-word subjects are tried before single words.
	var multi, single [][]string
	for _, s := range lexicon.PrioritySubjects {
		words := lexicon.Words(s)
		if len(words) > 1 {
			multi = append(multi, words)
		} else {
			single = append(single, words)
		}
	}

	return &PhraseMiner{
		tokenizer:  tokenizer,
		adjectives: adjectives,
		priority:   append(multi, single...),
	}
}

// Mine returns up to eight deduplicated phrases, most specific first:
// adjective+noun and subject+verb patterns, known compound scenes, subject
// nouns, then generic bigrams when the list is still sparse.
func (m *PhraseMiner) Mine(prompt string) []string {
	tokens := m.tokenizer.Tokenize(prompt)

	var phrases []string
	phrases = append(phrases, m.adjectivePhrases(tokens)...)
	phrases = append(phrases, m.actionPhrases(tokens)...)
	phrases = append(phrases, compoundPhrases(tokens)...)
	phrases = append(phrases, subjectPhrases(tokens)...)

	phrases = dedupePhrases(phrases)
	if len(phrases) < sparsePhraseCount {
		phrases = dedupePhrases(append(phrases, m.bigrams(tokens)...))
	}

	if len(phrases) == 0 {
		return m.fallbackPhrases(prompt, tokens)
	}
	if len(phrases) > maxMinedPhrases {
		phrases = phrases[:maxMinedPhrases]
	}
	return phrases
}

// PrimarySubject returns the single most important subject of the prompt.
// Multi-word priority subjects win over single words; without any, the
// first meaningful word is used, and finally the trimmed prompt.
func (m *PhraseMiner) PrimarySubject(prompt string) string {
	tokens := m.tokenizer.Tokenize(prompt)
	for _, subject := range m.priority {
		for i := range tokens {
			if lexicon.MatchAt(tokens, i, subject) {
				return strings.Join(subject, " ")
			}
		}
	}
	for _, t := range tokens {
		if len(t) >= minFallbackWordLength && hasLetter(t) {
			return t
		}
	}
	return strings.TrimSpace(prompt)
}

func (m *PhraseMiner) adjectivePhrases(tokens []string) []string {
	var out []string
	for i := range tokens {
		for _, adj := range m.adjectives {
			if !lexicon.MatchAt(tokens, i, adj) {
				continue
			}
			next := i + len(adj)
			if next < len(tokens) && m.meaningful(tokens[next]) {
				out = append(out, strings.Join(adj, " ")+" "+tokens[next])
			}
			break
		}
	}
	return out
}

func (m *PhraseMiner) actionPhrases(tokens []string) []string {
	var out []string
	for i, t := range tokens {
		if !lexicon.ActionWords.Has(t) {
			continue
		}
		if i > 0 && m.meaningful(tokens[i-1]) {
			out = append(out, tokens[i-1]+" "+t)
		}
		if i+1 < len(tokens) && m.meaningful(tokens[i+1]) {
			out = append(out, t+" "+tokens[i+1])
		}
	}
	return out
}

func compoundPhrases(tokens []string) []string {
	var out []string
	for _, phrase := range lexicon.CompoundPhrases {
		if lexicon.ContainsAll(tokens, phrase) {
			out = append(out, phrase)
		}
	}
	return out
}

func subjectPhrases(tokens []string) []string {
	var out []string
	for _, subject := range lexicon.MainSubjects {
		if len(out) == maxSubjectPhrases {
			break
		}
		if lexicon.Contains(tokens, subject) {
			out = append(out, subject)
		}
	}
	return out
}

// bigrams slides a two-word window over the meaningful tokens.
func (m *PhraseMiner) bigrams(tokens []string) []string {
	var words []string
	for _, t := range tokens {
		if m.meaningful(t) {
			words = append(words, t)
		}
	}
	var out []string
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// fallbackPhrases pairs the first and last meaningful words when nothing
// else could be mined.
func (m *PhraseMiner) fallbackPhrases(prompt string, tokens []string) []string {
	var words []string
	for _, t := range tokens {
		if len(t) >= minFallbackWordLength && hasLetter(t) {
			words = append(words, t)
		}
	}
	switch {
	case len(words) >= 2:
		return dedupePhrases([]string{
			strings.Join(words[:2], " "),
			strings.Join(words[len(words)-2:], " "),
		})
	case strings.TrimSpace(prompt) != "":
		return []string{strings.TrimSpace(prompt)}
	default:
		return nil
	}
}

func (m *PhraseMiner) meaningful(token string) bool {
	return len(token) >= minKeywordLength && hasLetter(token) &&
		!m.tokenizer.IsStopword(token) && !lexicon.DomainStopwords.Has(token)
}

func dedupePhrases(phrases []string) []string {
	seen := make(map[string]bool, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
