package service

import (
	"strconv"
	"strings"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/lexicon"
)

// ScoreWeights are the bonuses RelevanceScorer adds per matched signal.
type ScoreWeights struct {
	UltraHD        float64 // >= 3840x2160
	FullHD         float64 // >= 1920x1080
	HD             float64 // >= 1280x720
	AspectExact    float64 // |ratio - 16/9| < AspectExactTol
	AspectNear     float64 // |ratio - 16/9| < AspectNearTol
	DurationIdeal  float64 // 5-20s
	DurationGood   float64 // 3-30s
	DurationAny    float64 // > 0s
	QualityTag     float64 // quality mentions hd/high
	MoodColor      float64 // dark/bright query matches average color
	TagMatch       float64 // per provider tag sharing a word with the query
	SensibleSize   float64 // video file between MinFileSize and MaxFileSize
	AspectExactTol float64
	AspectNearTol  float64
	DarkLuminance  float64 // luminance below this is dark
	LightLuminance float64 // luminance above this is bright
	MinFileSize    int64
	MaxFileSize    int64
}

// DefaultScoreWeights returns the production scoring weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		UltraHD:        3.0,
		FullHD:         2.0,
		HD:             1.0,
		AspectExact:    2.0,
		AspectNear:     1.0,
		DurationIdeal:  3.0,
		DurationGood:   2.0,
		DurationAny:    1.0,
		QualityTag:     1.5,
		MoodColor:      1.5,
		TagMatch:       0.5,
		SensibleSize:   0.5,
		AspectExactTol: 0.1,
		AspectNearTol:  0.3,
		DarkLuminance:  100,
		LightLuminance: 150,
		MinFileSize:    1_000_000,
		MaxFileSize:    50_000_000,
	}
}

var (
	darkCues   = []string{"dark", "night"}
	brightCues = []string{"bright", "day", "sunny"}
)

// RelevanceScorer ranks candidates against a query. Scores are
// deterministic and conventionally fall in the 0-10 range.
type RelevanceScorer struct {
	tokenizer Tokenizer
	weights   ScoreWeights
}

// NewRelevanceScorer creates a scorer.
// Parameters:
//   - tokenizer: tokenizer used to split the query; nil selects the rich tokenizer.
//   - weights: scoring weights; nil uses DefaultScoreWeights.
// Returns:
//   - *RelevanceScorer: initialized scorer.
func NewRelevanceScorer(tokenizer Tokenizer, weights *ScoreWeights) *RelevanceScorer {
	if tokenizer == nil {
		tokenizer = NewTokenizer(TokenizerRich)
	}
	w := DefaultScoreWeights()
	if weights != nil {
		w = *weights
	}
	return &RelevanceScorer{tokenizer: tokenizer, weights: w}
}

// Score returns the relevance of candidate c for query; higher is better.
func (s *RelevanceScorer) Score(c domain.MediaCandidate, query string) float64 {
	w := s.weights
	tokens := s.tokenizer.Tokenize(query)
	score := 0.0

	switch {
	case c.Width >= 3840 && c.Height >= 2160:
		score += w.UltraHD
	case c.Width >= 1920 && c.Height >= 1080:
		score += w.FullHD
	case c.Width >= 1280 && c.Height >= 720:
		score += w.HD
	}

	switch dev := c.AspectDeviation(); {
	case dev < w.AspectExactTol:
		score += w.AspectExact
	case dev < w.AspectNearTol:
		score += w.AspectNear
	}

	if c.Kind == domain.MediaKindVideo {
		switch d := c.Duration; {
		case d >= 5 && d <= 20:
			score += w.DurationIdeal
		case d >= 3 && d <= 30:
			score += w.DurationGood
		case d > 0:
			score += w.DurationAny
		}
		if c.Size > w.MinFileSize && c.Size < w.MaxFileSize {
			score += w.SensibleSize
		}
	}

	quality := strings.ToLower(c.Quality)
	if strings.Contains(quality, "hd") || strings.Contains(quality, "high") {
		score += w.QualityTag
	}

	if lum, ok := luminance(c.AvgColor); ok {
		if containsAny(tokens, darkCues) && lum < w.DarkLuminance {
			score += w.MoodColor
		}
		if containsAny(tokens, brightCues) && lum > w.LightLuminance {
			score += w.MoodColor
		}
	}

	if len(c.Tags) > 0 && len(tokens) > 0 {
		querySet := lexicon.NewSet(tokens...)
		for _, tag := range c.Tags {
			for _, word := range lexicon.Words(tag) {
				if querySet.Has(word) {
					score += w.TagMatch
					break
				}
			}
		}
	}

	return score
}

// luminance returns the mean of the R, G and B channels of a #RRGGBB color.
func luminance(hex string) (float64, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	r := float64(v >> 16 & 0xff)
	g := float64(v >> 8 & 0xff)
	b := float64(v & 0xff)
	return (r + g + b) / 3, true
}

func containsAny(tokens []string, words []string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}
