package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/source"
)

// ErrInvalidInput is returned for requests that violate the search
// contract, such as an empty prompt or an unknown media kind.
var ErrInvalidInput = errors.New("invalid search input")

// SearchState is the terminal state of one search.
type SearchState string

const (
	// StateSatisfied means at least the requested number of results was found.
	StateSatisfied SearchState = "satisfied"
	// StateExhausted means every strategy ran and the result is still short.
	StateExhausted SearchState = "exhausted"
)

// Strategy names, in the order they are tried.
const (
	StrategyPrimary    = "primary"
	StrategyLearned    = "learned"
	StrategyPhrase     = "phrase"
	StrategySubject    = "subject"
	StrategySimplified = "simplified"
)

// SearchLearner is the part of the outcome learner the search depends on.
type SearchLearner interface {
	RecommendFor(prompt string) Recommendation
	Record(ctx context.Context, o Outcome) error
}

// MediaSearchConfig holds the cascade tunables.
type MediaSearchConfig struct {
	OverfetchFactor        int     // strategy 1 page size, times count
	FallbackFactor         int     // strategies 2-4 page size, times count
	PhraseStopFactorVideo  int     // phrase queries stop at count times this
	PhraseStopFactorImage  int
	MaxPhraseQueries       int
	SimplifiedTerms        int     // leading query terms kept by strategy 4
	LearnedQueryConfidence float64 // recommendation confidence needed to reuse a learned query
	PerPageMax             int
	DefaultMinDuration     int // seconds, video only
	KeywordLimit           int // keywords kept from long image prompts
	LongPromptWords        int // image prompts above this are condensed
}

// DefaultMediaSearchConfig returns the production cascade tunables.
func DefaultMediaSearchConfig() MediaSearchConfig {
	return MediaSearchConfig{
		OverfetchFactor:        3,
		FallbackFactor:         2,
		PhraseStopFactorVideo:  3,
		PhraseStopFactorImage:  2,
		MaxPhraseQueries:       3,
		SimplifiedTerms:        3,
		LearnedQueryConfidence: 0.8,
		PerPageMax:             80,
		DefaultMinDuration:     3,
		KeywordLimit:           6,
		LongPromptWords:        8,
	}
}

// SearchRequest is one media search.
type SearchRequest struct {
	Prompt      string           `json:"prompt" binding:"required"`
	Count       int              `json:"count"`
	Kind        domain.MediaKind `json:"kind"`
	MinDuration int              `json:"min_duration"`
}

// StrategyReport describes one provider query issued during a search.
type StrategyReport struct {
	Strategy string            `json:"strategy"`
	Query    string            `json:"query"`
	Params   map[string]string `json:"params,omitempty"`
	Returned int               `json:"returned"`
	Added    int               `json:"added"`
	Error    string            `json:"error,omitempty"`
}

// SearchResult is the ranked outcome of a search.
type SearchResult struct {
	SearchID       string                  `json:"search_id"`
	State          SearchState             `json:"state"`
	Kind           domain.MediaKind        `json:"kind"`
	Query          string                  `json:"query"`
	QueryUsed      string                  `json:"query_used"`
	Params         map[string]string       `json:"params"`
	MinDuration    int                     `json:"min_duration,omitempty"`
	Results        []domain.MediaCandidate `json:"results"`
	Total          int                     `json:"total"`
	Strategies     []StrategyReport        `json:"strategies"`
	Recommendation *Recommendation         `json:"recommendation,omitempty"`
}

// MediaSearchService finds stock media for a prompt. It starts with the
// full interpreted query and widens step by step (mined phrases, the
// primary subject, a shortened query) until enough unique candidates are
// found, then ranks them by relevance.
type MediaSearchService struct {
	source      source.Source
	interpreter *QueryInterpreter
	extractor   *KeywordExtractor
	miner       *PhraseMiner
	scorer      *RelevanceScorer
	learner     SearchLearner
	cfg         MediaSearchConfig
	metrics     *metrics.Metrics
}

// NewMediaSearchService creates a search service.
// Parameters:
//   - src: stock media source.
//   - tokenizer: tokenizer shared by the text components; nil selects the rich tokenizer.
//   - learner: optional outcome learner; pass nil to search without learning.
//   - cfg: cascade tunables; nil uses DefaultMediaSearchConfig.
//   - m: metrics sink; may be nil.
// Returns:
//   - *MediaSearchService: initialized service.
func NewMediaSearchService(src source.Source, tokenizer Tokenizer, learner SearchLearner, cfg *MediaSearchConfig, m *metrics.Metrics) *MediaSearchService {
	if tokenizer == nil {
		tokenizer = NewTokenizer(TokenizerRich)
	}
	c := DefaultMediaSearchConfig()
	if cfg != nil {
		c = *cfg
	}
	return &MediaSearchService{
		source:      src,
		interpreter: NewQueryInterpreter(tokenizer),
		extractor:   NewKeywordExtractor(tokenizer),
		miner:       NewPhraseMiner(tokenizer),
		scorer:      NewRelevanceScorer(tokenizer, nil),
		learner:     learner,
		cfg:         c,
		metrics:     m,
	}
}

// searchRun is the mutable state of one Search call.
type searchRun struct {
	kind        domain.MediaKind
	minDuration int
	seen        map[string]bool
	executed    map[string]bool
	candidates  []domain.MediaCandidate
	reports     []StrategyReport
	queryUsed   string
}

// Search runs the strategy cascade for req and returns up to req.Count
// ranked, deduplicated candidates. Provider failures never fail the search;
// they count as empty results. A non-positive count returns an empty result
// without contacting the provider.
func (s *MediaSearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.MediaKindVideo
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown media kind %q", ErrInvalidInput, req.Kind)
	}

	searchID := uuid.NewString()
	ctx = logger.StartSearch(ctx, searchID)

	query, params := s.interpreter.Interpret(prompt)
	if kind == domain.MediaKindImage && len(strings.Fields(prompt)) > s.cfg.LongPromptWords {
		query = s.extractor.Extract(query, s.cfg.KeywordLimit)
	}

	result := &SearchResult{
		SearchID:   searchID,
		State:      StateSatisfied,
		Kind:       kind,
		Query:      query,
		QueryUsed:  query,
		Params:     params,
		Results:    []domain.MediaCandidate{},
		Strategies: []StrategyReport{},
	}
	count := req.Count
	if count <= 0 {
		return result, nil
	}

	start := time.Now()

	var rec *Recommendation
	if s.learner != nil {
		r := s.learner.RecommendFor(prompt)
		rec = &r
		result.Recommendation = rec
	}

	run := &searchRun{
		kind:     kind,
		seen:     make(map[string]bool),
		executed: make(map[string]bool),
	}
	if kind == domain.MediaKindVideo {
		run.minDuration = req.MinDuration
		if run.minDuration <= 0 {
			run.minDuration = s.cfg.DefaultMinDuration
		}
		if rec != nil && rec.MinDuration > run.minDuration {
			run.minDuration = rec.MinDuration
		}
	}
	run.queryUsed = query

	logger.CtxInfo(ctx, "Starting media search: prompt=%q, query=%q, params=%v, kind=%s, count=%d, min_duration=%d",
		prompt, query, params, kind, count, run.minDuration)

	// Strategy 1: full interpreted query with filters.
	s.execute(ctx, run, StrategyPrimary, query, params, count*s.cfg.OverfetchFactor)

	// Strategy 2: mined phrases, led by a learned query once it is trusted.
	if len(run.candidates) < count {
		stopAt := count * s.cfg.PhraseStopFactorVideo
		if kind == domain.MediaKindImage {
			stopAt = count * s.cfg.PhraseStopFactorImage
		}

		type attempt struct{ strategy, query string }
		var attempts []attempt
		if rec != nil && rec.Confidence >= s.cfg.LearnedQueryConfidence && len(rec.SuccessfulQueries) > 0 {
			attempts = append(attempts, attempt{StrategyLearned, rec.SuccessfulQueries[0]})
		}
		phrases := s.miner.Mine(prompt)
		if len(phrases) > s.cfg.MaxPhraseQueries {
			phrases = phrases[:s.cfg.MaxPhraseQueries]
		}
		for _, p := range phrases {
			attempts = append(attempts, attempt{StrategyPhrase, p})
		}

		for _, a := range attempts {
			s.execute(ctx, run, a.strategy, a.query, nil, count*s.cfg.FallbackFactor)
			if len(run.candidates) >= stopAt {
				break
			}
		}
	}

	// Strategy 3: the single most important subject.
	if len(run.candidates) < count {
		s.execute(ctx, run, StrategySubject, s.miner.PrimarySubject(prompt), nil, count*s.cfg.FallbackFactor)
	}

	// Strategy 4: leading terms of the primary query, unfiltered.
	if len(run.candidates) < count {
		terms := strings.Fields(query)
		if len(terms) > s.cfg.SimplifiedTerms {
			terms = terms[:s.cfg.SimplifiedTerms]
		}
		s.execute(ctx, run, StrategySimplified, strings.Join(terms, " "), nil, count*s.cfg.FallbackFactor)
	}

	ranked := s.rank(run.candidates, query, kind)
	if len(ranked) > count {
		ranked = ranked[:count]
	}

	result.Results = ranked
	result.Total = len(ranked)
	result.QueryUsed = run.queryUsed
	result.MinDuration = run.minDuration
	result.Strategies = run.reports
	if len(ranked) < count {
		result.State = StateExhausted
	}

	elapsed := time.Since(start).Milliseconds()
	entry := logger.With(logger.Fields{
		logger.FieldStatus: string(result.State),
		logger.FieldQuery:  run.queryUsed,
	}).WithDuration(elapsed).WithCount(len(ranked))
	if len(ranked) == 0 {
		entry.Warn(ctx, "Media search found nothing: prompt=%q, attempts=%d", prompt, len(run.reports))
	} else {
		entry.Info(ctx, "Media search finished: unique=%d, attempts=%d", len(run.candidates), len(run.reports))
	}

	if s.learner != nil {
		err := s.learner.Record(ctx, Outcome{
			Prompt:      prompt,
			Query:       run.queryUsed,
			Kind:        kind,
			Requested:   count,
			ResultCount: len(ranked),
			Success:     len(ranked) >= count,
			Candidates:  ranked,
		})
		if err != nil {
			logger.CtxWarn(ctx, "Failed to record search outcome: error=%v", err)
		}
	}

	s.metrics.ObserveSearch(string(kind), string(result.State), start)
	return result, nil
}

// Browse runs only the primary query and returns up to req.Count
// candidates in provider order, for letting a user pick clips by hand.
// Nothing is recorded with the learner.
func (s *MediaSearchService) Browse(ctx context.Context, req SearchRequest) ([]domain.MediaCandidate, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.MediaKindVideo
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown media kind %q", ErrInvalidInput, req.Kind)
	}
	if req.Count <= 0 {
		return []domain.MediaCandidate{}, nil
	}

	run := &searchRun{
		kind:     kind,
		seen:     make(map[string]bool),
		executed: make(map[string]bool),
	}
	if kind == domain.MediaKindVideo {
		run.minDuration = req.MinDuration
		if run.minDuration <= 0 {
			run.minDuration = s.cfg.DefaultMinDuration
		}
	}

	query, params := s.interpreter.Interpret(prompt)
	s.execute(ctx, run, StrategyPrimary, query, params, req.Count)

	out := run.candidates
	if len(out) > req.Count {
		out = out[:req.Count]
	}
	if out == nil {
		out = []domain.MediaCandidate{}
	}
	return out, nil
}

// execute issues one provider query and folds new candidates into run.
// A query already issued with the same filters is skipped.
func (s *MediaSearchService) execute(ctx context.Context, run *searchRun, strategy, query string, params map[string]string, perPage int) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	key := queryKey(query, params)
	if run.executed[key] {
		return
	}
	run.executed[key] = true

	if perPage < 1 {
		perPage = 1
	}
	if s.cfg.PerPageMax > 0 && perPage > s.cfg.PerPageMax {
		perPage = s.cfg.PerPageMax
	}

	report := StrategyReport{Strategy: strategy, Query: query, Params: params}
	s.metrics.StrategyAttempt(strategy)

	found, err := s.source.Search(ctx, source.Query{
		Kind:    run.kind,
		Text:    query,
		Params:  params,
		PerPage: perPage,
	})
	if err != nil {
		s.metrics.ProviderError(strategy)
		report.Error = err.Error()
		run.reports = append(run.reports, report)
		logger.With(logger.Fields{logger.FieldProvider: s.source.GetSourceID()}).
			WithStrategy(strategy, query).
			Warn(ctx, "Provider query failed, continuing: error=%v", err)
		return
	}

	report.Returned = len(found)
	for _, c := range found {
		if c.ID == "" || run.seen[c.ID] {
			continue
		}
		if run.kind == domain.MediaKindVideo && c.Duration < float64(run.minDuration) {
			continue
		}
		run.seen[c.ID] = true
		c.Strategy = strategy
		run.candidates = append(run.candidates, c)
		report.Added++
	}
	if report.Added > 0 {
		run.queryUsed = query
	}
	run.reports = append(run.reports, report)
	s.metrics.StrategyYield(strategy, report.Added)

	logger.With(logger.Fields{logger.FieldCount: report.Added}).
		WithStrategy(strategy, query).
		Debug(ctx, "Strategy query done: returned=%d, unique=%d", report.Returned, len(run.candidates))
}

// rank scores candidates against query and orders them best first. Ties
// fall back to pixel area, then duration for video or closeness to 16:9
// for images; remaining ties keep discovery order.
func (s *MediaSearchService) rank(candidates []domain.MediaCandidate, query string, kind domain.MediaKind) []domain.MediaCandidate {
	ranked := make([]domain.MediaCandidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Score = s.scorer.Score(ranked[i], query)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Area() != b.Area() {
			return a.Area() > b.Area()
		}
		if kind == domain.MediaKindVideo {
			return a.Duration > b.Duration
		}
		return a.AspectDeviation() < b.AspectDeviation()
	})
	return ranked
}

// queryKey identifies a query together with its filters.
func queryKey(query string, params map[string]string) string {
	if len(params) == 0 {
		return query
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(query)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}
