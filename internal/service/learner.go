package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/lexicon"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/repository"
)

// ErrInvalidFeedback is returned for feedback without a prompt or with a
// rating outside 1-5.
var ErrInvalidFeedback = errors.New("invalid feedback")

const (
	generalKey  = "general"
	neutralMood = "neutral"

	// Confidence rises linearly from baseConfidence to
	// baseConfidence+confidenceSpan over HighConfidenceSuccesses successes.
	baseConfidence = 0.5
	confidenceSpan = 0.4

	maxAnalysisKeywords = 10
	minLearnedKeyword   = 4
	// feedbackConfidenceN is the number of good ratings for full training confidence.
	feedbackConfidenceN = 20
)

// LearnerConfig bounds the learner's memory and sets its confidence ramp.
type LearnerConfig struct {
	SessionWindow           int // most recent sessions kept
	FeedbackWindow          int // most recent user ratings kept
	HighConfidenceSuccesses int // successes at which confidence peaks
	MaxQueriesPerPattern    int
	MaxCharacteristics      int
	MaxExamples             int
}

// DefaultLearnerConfig returns the production learner bounds.
func DefaultLearnerConfig() LearnerConfig {
	return LearnerConfig{
		SessionWindow:           1000,
		FeedbackWindow:          1000,
		HighConfidenceSuccesses: 5,
		MaxQueriesPerPattern:    20,
		MaxCharacteristics:      50,
		MaxExamples:             10,
	}
}

// Outcome is the result of one finished search, as reported to the learner.
type Outcome struct {
	Prompt      string
	Query       string
	Kind        domain.MediaKind
	Requested   int
	ResultCount int
	Success     bool
	Candidates  []domain.MediaCandidate
}

// Recommendation is the learner's advice for prompts of one pattern.
type Recommendation struct {
	PatternKey        string   `json:"pattern_key"`
	SceneType         string   `json:"scene_type"`
	MinDuration       int      `json:"min_duration"`
	MaxDuration       int      `json:"max_duration"`
	Confidence        float64  `json:"confidence"`
	PreferredQuality  string   `json:"preferred_quality"`
	Orientation       string   `json:"orientation"`
	SuccessfulQueries []string `json:"successful_queries,omitempty"`
	Occurrences       int      `json:"occurrences"`
	Successes         int      `json:"successes"`
}

// SimilarPrompt is a past successful prompt of the same pattern.
type SimilarPrompt struct {
	Prompt    string    `json:"prompt"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// PromptAnalysis describes what the learner recognizes in a prompt.
type PromptAnalysis struct {
	Prompt         string          `json:"prompt"`
	PatternKey     string          `json:"pattern_key"`
	SceneType      string          `json:"scene_type"`
	Mood           string          `json:"mood"`
	TimeOfDay      string          `json:"time_of_day,omitempty"`
	Weather        string          `json:"weather,omitempty"`
	Location       string          `json:"location"`
	Keywords       []string        `json:"keywords"`
	Recommendation Recommendation  `json:"recommendation"`
	Similar        []SimilarPrompt `json:"similar"`
	Suggestions    []string        `json:"suggestions"`
}

// KeywordStat is one keyword frequency entry.
type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// SceneStat is the number of searches seen for a scene type.
type SceneStat struct {
	SceneType string `json:"scene_type"`
	Count     int    `json:"count"`
}

// TrainingStats summarize explicit user ratings.
type TrainingStats struct {
	TotalExamples      int     `json:"total_examples"`
	SuccessfulExamples int     `json:"successful_examples"`
	AverageRating      float64 `json:"average_rating"`
	LearnedPatterns    int     `json:"learned_patterns"`
	Confidence         float64 `json:"confidence"`
	SuccessRate        float64 `json:"success_rate"`
}

// Insights summarize everything learned so far.
type Insights struct {
	TotalGenerations int           `json:"total_generations"`
	Successful       int           `json:"successful_generations"`
	Failed           int           `json:"failed_generations"`
	SuccessRate      float64       `json:"success_rate"`
	TopKeywords      []KeywordStat `json:"top_keywords"`
	TopSceneTypes    []SceneStat   `json:"top_scene_types"`
	Patterns         int           `json:"patterns"`
	TotalSessions    int           `json:"total_sessions"`
	Training         TrainingStats `json:"training"`
}

// OutcomeLearner remembers which queries worked for which kinds of prompts
// and feeds that back into later searches. It is safe for concurrent use:
// writes hold an exclusive lock across modify and save, reads share it.
type OutcomeLearner struct {
	mu        sync.RWMutex
	doc       *domain.LearningDocument
	store     repository.LearningStore
	tokenizer Tokenizer
	cfg       LearnerConfig
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewOutcomeLearner creates a learner and loads its persisted state.
// Parameters:
//   - ctx: context for the initial load.
//   - store: durable store; nil keeps state in memory only.
//   - tokenizer: tokenizer strategy; nil selects the rich tokenizer.
//   - cfg: bounds; nil uses DefaultLearnerConfig.
//   - m: metrics sink; may be nil.
// Returns:
//   - *OutcomeLearner: learner starting from the stored state, or from an
//     empty state when the store is missing or corrupt.
func NewOutcomeLearner(ctx context.Context, store repository.LearningStore, tokenizer Tokenizer, cfg *LearnerConfig, m *metrics.Metrics) *OutcomeLearner {
	if tokenizer == nil {
		tokenizer = NewTokenizer(TokenizerRich)
	}
	c := DefaultLearnerConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.HighConfidenceSuccesses <= 0 {
		c.HighConfidenceSuccesses = 5
	}

	l := &OutcomeLearner{
		doc:       domain.NewLearningDocument(),
		store:     store,
		tokenizer: tokenizer,
		cfg:       c,
		metrics:   m,
		now:       time.Now,
	}

	if store != nil {
		doc, err := store.Load(ctx)
		if err != nil {
			logger.Component("learner").
				Warn(ctx, "Learning data unusable, starting empty: error=%v", err)
		} else {
			l.doc = doc
			logger.With(logger.Fields{
				logger.FieldComponent: "learner",
				logger.FieldCount:     len(doc.PromptPatterns),
			}).Info(ctx, "Loaded learning data: sessions=%d", len(doc.Sessions))
		}
	}
	return l
}

// Classify returns the pattern key for prompt: the first known subject,
// time of day and mood, joined by "_" with repeated parts dropped, or
// "general" when none is present.
func (l *OutcomeLearner) Classify(prompt string) string {
	return classify(l.tokenizer.Tokenize(prompt))
}

func classify(tokens []string) string {
	var parts []string
	for _, terms := range [][]string{lexicon.PatternSubjects, lexicon.PatternTimes, lexicon.PatternMoods} {
		term, ok := lexicon.FirstTerm(tokens, terms)
		if !ok {
			continue
		}
		part := strings.ReplaceAll(term, " ", "-")
		dup := false
		for _, p := range parts {
			if p == part {
				dup = true
				break
			}
		}
		if !dup {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return generalKey
	}
	return strings.Join(parts, "_")
}

func sceneType(tokens []string) string {
	if scene, ok := lexicon.FirstCategory(tokens, lexicon.SceneTypes); ok {
		return scene
	}
	return generalKey
}

// Record stores the outcome of one search and persists the updated state.
// The pattern count always grows by one; a successful outcome also records
// the query, the prompt's keywords and the delivered candidates.
func (l *OutcomeLearner) Record(ctx context.Context, o Outcome) error {
	if strings.TrimSpace(o.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	}
	tokens := l.tokenizer.Tokenize(o.Prompt)
	key := classify(tokens)
	scene := sceneType(tokens)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	p := l.pattern(key, scene, now)
	p.Count++
	if o.Success {
		p.SuccessCount++
		l.addQuery(p, o.Query)
		p.Examples = appendBounded(p.Examples, o.Prompt, l.cfg.MaxExamples)
		for _, c := range o.Candidates {
			p.VideoCharacteristics = appendBounded(p.VideoCharacteristics, domain.Characteristics{
				Duration: c.Duration,
				Width:    c.Width,
				Height:   c.Height,
				Quality:  c.Quality,
			}, l.cfg.MaxCharacteristics)
		}
		for _, kw := range learnedKeywords(tokens) {
			l.doc.KeywordFrequency[kw]++
		}
	}

	m := &l.doc.SuccessMetrics
	m.Total++
	if o.Success {
		m.Successful++
	} else {
		m.Failed++
	}
	m.LastUpdated = now

	l.doc.Sessions = appendBounded(l.doc.Sessions, domain.FeedbackRecord{
		ID:          uuid.NewString(),
		Timestamp:   now,
		Prompt:      o.Prompt,
		Query:       o.Query,
		Kind:        o.Kind,
		PatternKey:  key,
		SceneType:   scene,
		Requested:   o.Requested,
		ResultCount: o.ResultCount,
		Success:     o.Success,
	}, l.cfg.SessionWindow)

	l.metrics.OutcomeRecorded(o.Success)
	return l.saveLocked(ctx)
}

// RecordFeedback stores an explicit 1-5 rating. Ratings of 4 or more count
// as a success for the prompt's pattern; ratings of 2 or less remember the
// query as failed and derive suggestions from the comment.
func (l *OutcomeLearner) RecordFeedback(ctx context.Context, fb domain.UserFeedback) error {
	if strings.TrimSpace(fb.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidFeedback)
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("%w: rating %d outside 1-5", ErrInvalidFeedback, fb.Rating)
	}
	tokens := l.tokenizer.Tokenize(fb.Prompt)
	key := classify(tokens)
	scene := sceneType(tokens)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = now
	}
	fb.PatternKey = key

	switch {
	case fb.Rating >= 4:
		p := l.pattern(key, scene, now)
		p.Count++
		p.SuccessCount++
		l.addQuery(p, fb.Query)
		p.Examples = appendBounded(p.Examples, fb.Prompt, l.cfg.MaxExamples)
		if fb.Duration > 0 || fb.Width > 0 || fb.Height > 0 {
			p.VideoCharacteristics = appendBounded(p.VideoCharacteristics, domain.Characteristics{
				Duration: fb.Duration,
				Width:    fb.Width,
				Height:   fb.Height,
				Quality:  fb.Quality,
				Rating:   fb.Rating,
			}, l.cfg.MaxCharacteristics)
		}
	case fb.Rating <= 2:
		p := l.pattern(key, scene, now)
		if fb.Query != "" {
			p.FailedQueries = appendBounded(p.FailedQueries, fb.Query, l.cfg.MaxQueriesPerPattern)
		}
		for _, s := range feedbackSuggestions(fb.Comment) {
			if !containsString(p.Suggestions, s) {
				p.Suggestions = append(p.Suggestions, s)
			}
		}
	}

	l.doc.UserFeedback = appendBounded(l.doc.UserFeedback, fb, l.cfg.FeedbackWindow)

	logger.With(logger.Fields{
		logger.FieldComponent:  "learner",
		logger.FieldPatternKey: key,
	}).Info(ctx, "Recorded user feedback: rating=%d", fb.Rating)

	return l.saveLocked(ctx)
}

// Recommend returns the advice for a pattern key. Unknown keys get the
// general defaults with base confidence.
func (l *OutcomeLearner) Recommend(patternKey string) Recommendation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	scene := generalKey
	if p, ok := l.doc.PromptPatterns[patternKey]; ok && p.SceneType != "" {
		scene = p.SceneType
	}
	return l.recommendLocked(patternKey, scene)
}

// RecommendFor classifies prompt and returns the advice for its pattern,
// using the prompt's own scene type for duration defaults.
func (l *OutcomeLearner) RecommendFor(prompt string) Recommendation {
	tokens := l.tokenizer.Tokenize(prompt)
	key := classify(tokens)

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recommendLocked(key, sceneType(tokens))
}

func (l *OutcomeLearner) recommendLocked(key, scene string) Recommendation {
	minDur, maxDur := sceneDurations(scene)
	rec := Recommendation{
		PatternKey:       key,
		SceneType:        scene,
		MinDuration:      minDur,
		MaxDuration:      maxDur,
		Confidence:       baseConfidence,
		PreferredQuality: "hd",
		Orientation:      OrientationLandscape,
	}

	p, ok := l.doc.PromptPatterns[key]
	if !ok {
		return rec
	}

	high := l.cfg.HighConfidenceSuccesses
	rec.Occurrences = p.Count
	rec.Successes = p.SuccessCount
	rec.SuccessfulQueries = append([]string(nil), p.SuccessfulQueries...)
	rec.Confidence = baseConfidence + confidenceSpan*float64(min(p.SuccessCount, high))/float64(high)

	if p.SuccessCount >= high {
		if avg, ok := averageDuration(p.VideoCharacteristics); ok {
			rec.MinDuration = max(3, int(avg*0.5))
			rec.MaxDuration = max(rec.MinDuration, int(math.Ceil(avg*1.5)))
		}
	}
	return rec
}

// sceneDurations returns the default clip length bounds for a scene type.
func sceneDurations(scene string) (int, int) {
	switch scene {
	case "timelapse":
		return 3, 10
	case "nature_landscape", "water_scene":
		return 8, 30
	case "urban":
		return 5, 20
	default:
		return 5, 30
	}
}

func averageDuration(chars domain.CharacteristicList) (float64, bool) {
	sum, n := 0.0, 0
	for _, c := range chars {
		if c.Duration > 0 {
			sum += c.Duration
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Similar returns up to limit past successful prompts sharing prompt's
// pattern key, most recent first.
func (l *OutcomeLearner) Similar(prompt string, limit int) []SimilarPrompt {
	key := l.Classify(prompt)

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.similarLocked(key, limit)
}

func (l *OutcomeLearner) similarLocked(key string, limit int) []SimilarPrompt {
	out := []SimilarPrompt{}
	if limit <= 0 {
		return out
	}
	for i := len(l.doc.Sessions) - 1; i >= 0 && len(out) < limit; i-- {
		s := l.doc.Sessions[i]
		if s.Success && s.PatternKey == key {
			out = append(out, SimilarPrompt{Prompt: s.Prompt, Query: s.Query, Timestamp: s.Timestamp})
		}
	}
	return out
}

// Analyze describes the prompt: its pattern and scene, mood, time of day,
// weather and location cues, keywords, the current recommendation, similar
// successful prompts and improvement suggestions.
func (l *OutcomeLearner) Analyze(prompt string) PromptAnalysis {
	tokens := l.tokenizer.Tokenize(prompt)
	key := classify(tokens)
	scene := sceneType(tokens)

	a := PromptAnalysis{
		Prompt:     prompt,
		PatternKey: key,
		SceneType:  scene,
		Mood:       neutralMood,
		Location:   generalKey,
		Keywords:   learnedKeywords(tokens),
	}
	if mood, ok := lexicon.FirstCategory(tokens, lexicon.Moods); ok {
		a.Mood = mood
	}
	if t, ok := lexicon.FirstCategory(tokens, lexicon.TimesOfDay); ok {
		a.TimeOfDay = t
	}
	if w, ok := lexicon.FirstTerm(tokens, lexicon.Weather); ok {
		a.Weather = w
	}
	if loc, ok := lexicon.FirstCategory(tokens, lexicon.Locations); ok {
		a.Location = loc
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	a.Recommendation = l.recommendLocked(key, scene)
	a.Similar = l.similarLocked(key, 3)
	a.Suggestions = l.suggestLocked(prompt, tokens, key)
	return a
}

// Suggest returns hints for making prompt produce better results.
func (l *OutcomeLearner) Suggest(prompt string) []string {
	tokens := l.tokenizer.Tokenize(prompt)
	key := classify(tokens)

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.suggestLocked(prompt, tokens, key)
}

func (l *OutcomeLearner) suggestLocked(prompt string, tokens []string, key string) []string {
	suggestions := []string{}

	p := l.doc.PromptPatterns[key]
	if p != nil && p.SuccessCount >= 3 {
		suggestions = append(suggestions, fmt.Sprintf("Similar prompts have %d successful examples", p.SuccessCount))
	}
	if _, ok := lexicon.FirstCategory(tokens, lexicon.TimesOfDay); !ok {
		suggestions = append(suggestions, "Add time of day (e.g. 'at sunset', 'at night', 'during golden hour')")
	}
	if _, ok := lexicon.FirstCategory(tokens, lexicon.Moods); !ok {
		suggestions = append(suggestions, "Add mood words (e.g. 'peaceful', 'dramatic', 'energetic')")
	}
	if _, ok := lexicon.FirstTerm(tokens, lexicon.Colors); !ok {
		suggestions = append(suggestions, "Specify colors (e.g. 'turquoise water', 'golden light')")
	}
	if _, ok := lexicon.FirstTerm(tokens, lexicon.PatternSubjects); !ok {
		suggestions = append(suggestions, "Add a specific subject (e.g. 'ocean', 'mountain', 'city')")
	}
	if len(strings.Fields(prompt)) < 5 {
		suggestions = append(suggestions, "Add more details, longer prompts get better results")
	}
	if p != nil {
		for _, s := range p.Suggestions {
			if !containsString(suggestions, s) {
				suggestions = append(suggestions, s)
			}
		}
	}
	return suggestions
}

// Insights returns lifetime totals, the ten most frequent keywords and the
// five most searched scene types.
func (l *OutcomeLearner) Insights() Insights {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m := l.doc.SuccessMetrics
	in := Insights{
		TotalGenerations: m.Total,
		Successful:       m.Successful,
		Failed:           m.Failed,
		Patterns:         len(l.doc.PromptPatterns),
		TotalSessions:    len(l.doc.Sessions),
		Training:         l.trainingStatsLocked(),
	}
	if m.Total > 0 {
		in.SuccessRate = round(float64(m.Successful)/float64(m.Total)*100, 1)
	}

	keywords := make([]KeywordStat, 0, len(l.doc.KeywordFrequency))
	for k, c := range l.doc.KeywordFrequency {
		keywords = append(keywords, KeywordStat{Keyword: k, Count: c})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	in.TopKeywords = keywords

	byScene := make(map[string]int)
	for _, p := range l.doc.PromptPatterns {
		byScene[p.SceneType] += p.Count
	}
	scenes := make([]SceneStat, 0, len(byScene))
	for s, c := range byScene {
		scenes = append(scenes, SceneStat{SceneType: s, Count: c})
	}
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].Count != scenes[j].Count {
			return scenes[i].Count > scenes[j].Count
		}
		return scenes[i].SceneType < scenes[j].SceneType
	})
	if len(scenes) > 5 {
		scenes = scenes[:5]
	}
	in.TopSceneTypes = scenes
	return in
}

// TrainingStats summarizes the explicit user ratings.
func (l *OutcomeLearner) TrainingStats() TrainingStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.trainingStatsLocked()
}

func (l *OutcomeLearner) trainingStatsLocked() TrainingStats {
	stats := TrainingStats{}
	for _, p := range l.doc.PromptPatterns {
		if p.SuccessCount > 0 {
			stats.LearnedPatterns++
		}
	}

	total := len(l.doc.UserFeedback)
	if total == 0 {
		return stats
	}
	sum := 0
	for _, f := range l.doc.UserFeedback {
		sum += f.Rating
		if f.Rating >= 4 {
			stats.SuccessfulExamples++
		}
	}
	stats.TotalExamples = total
	stats.AverageRating = round(float64(sum)/float64(total), 2)
	stats.Confidence = math.Min(1, float64(stats.SuccessfulExamples)/feedbackConfidenceN)
	stats.SuccessRate = round(float64(stats.SuccessfulExamples)/float64(total)*100, 1)
	return stats
}

// IsEmpty reports whether nothing has been learned yet.
func (l *OutcomeLearner) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.doc.IsEmpty()
}

// Export serializes the current state in the store's JSON format.
func (l *OutcomeLearner) Export() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return repository.EncodeDocument(l.doc)
}

// Import replaces the current state with a serialized document and
// persists it.
func (l *OutcomeLearner) Import(ctx context.Context, data []byte) error {
	doc, err := repository.DecodeDocument(data)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.doc = doc
	return l.saveLocked(ctx)
}

// pattern returns the pattern for key, creating it on first use.
func (l *OutcomeLearner) pattern(key, scene string, now time.Time) *domain.PromptPattern {
	p, ok := l.doc.PromptPatterns[key]
	if !ok {
		p = &domain.PromptPattern{Key: key, SceneType: scene, CreatedAt: now}
		l.doc.PromptPatterns[key] = p
	}
	p.UpdatedAt = now
	return p
}

func (l *OutcomeLearner) addQuery(p *domain.PromptPattern, query string) {
	query = strings.TrimSpace(query)
	if query == "" || containsString(p.SuccessfulQueries, query) {
		return
	}
	p.SuccessfulQueries = appendBounded(p.SuccessfulQueries, query, l.cfg.MaxQueriesPerPattern)
}

func (l *OutcomeLearner) saveLocked(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(ctx, l.doc); err != nil {
		return fmt.Errorf("failed to save learning data: %w", err)
	}
	return nil
}

// learnedKeywords keeps the words worth counting: longer than three
// characters and not a filler word.
func learnedKeywords(tokens []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, t := range tokens {
		if len(out) == maxAnalysisKeywords {
			break
		}
		if len(t) < minLearnedKeyword || seen[t] || lexicon.LearningStopwords.Has(t) || !hasLetter(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// feedbackSuggestions maps a complaint to concrete prompt changes.
func feedbackSuggestions(comment string) []string {
	c := strings.ToLower(comment)
	var out []string
	if strings.Contains(c, "not matching") || strings.Contains(c, "wrong") {
		out = append(out,
			"Try adding more specific descriptive words",
			"Include time of day (morning, sunset, night)",
			"Add mood words (peaceful, dramatic, energetic)",
		)
	}
	if strings.Contains(c, "quality") {
		out = append(out,
			"Specify '4K' or 'cinematic' in prompt",
			"Add 'high quality' or 'professional'",
		)
	}
	if strings.Contains(c, "short") || strings.Contains(c, "duration") {
		out = append(out,
			"Specify desired duration in prompt",
			"Request 'slow motion' or 'time-lapse' if appropriate",
		)
	}
	return out
}

// appendBounded appends v and keeps only the newest limit elements.
// A non-positive limit means unbounded.
func appendBounded[S ~[]E, E any](s S, v E, limit int) S {
	s = append(s, v)
	if limit > 0 && len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
