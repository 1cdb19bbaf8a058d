package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/repository"
	"github.com/timmy/reelsearch/internal/source"
)

// fakeSource answers queries from a fixed table keyed by query text.
type fakeSource struct {
	mu      sync.Mutex
	results map[string][]domain.MediaCandidate
	errs    map[string]error
	calls   []source.Query
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		results: make(map[string][]domain.MediaCandidate),
		errs:    make(map[string]error),
	}
}

func (f *fakeSource) GetSourceID() string    { return "fake" }
func (f *fakeSource) GetDisplayName() string { return "Fake" }

func (f *fakeSource) Search(_ context.Context, q source.Query) ([]domain.MediaCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if err := f.errs[q.Text]; err != nil {
		return nil, err
	}
	return append([]domain.MediaCandidate(nil), f.results[q.Text]...), nil
}

func (f *fakeSource) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Text)
	}
	return out
}

// fakeLearner returns a fixed recommendation and captures outcomes.
type fakeLearner struct {
	mu       sync.Mutex
	rec      Recommendation
	outcomes []Outcome
	err      error
}

func (f *fakeLearner) RecommendFor(string) Recommendation { return f.rec }

func (f *fakeLearner) Record(_ context.Context, o Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
	return f.err
}

func video(id string, w, h int, duration float64) domain.MediaCandidate {
	return domain.MediaCandidate{ID: id, Kind: domain.MediaKindVideo, Width: w, Height: h, Duration: duration, URL: "https://cdn.test/" + id}
}

func videos(prefix string, n int) []domain.MediaCandidate {
	out := make([]domain.MediaCandidate, n)
	for i := range out {
		out[i] = video(fmt.Sprintf("%s-%d", prefix, i), 1920, 1080, 10)
	}
	return out
}

func ids(cs []domain.MediaCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

const cascadePrompt = "beautiful sunset over the ocean with waves crashing"

func TestMediaSearchService_PrimarySatisfies(t *testing.T) {
	src := newFakeSource()
	src.results["peaceful ocean waves sunset"] = videos("p", 9)
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: "peaceful ocean waves at sunset", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, StateSatisfied, res.State)
	assert.Equal(t, domain.MediaKindVideo, res.Kind)
	assert.Equal(t, "peaceful ocean waves sunset", res.Query)
	assert.Equal(t, res.Query, res.QueryUsed)
	assert.Len(t, res.Results, 3)
	assert.Equal(t, 3, res.Total)
	assert.NotEmpty(t, res.SearchID)
	assert.Equal(t, 3, res.MinDuration)
	require.Len(t, res.Strategies, 1)
	assert.Equal(t, StrategyPrimary, res.Strategies[0].Strategy)
	assert.Equal(t, 9, res.Strategies[0].Added)

	require.Len(t, src.calls, 1)
	assert.Equal(t, 9, src.calls[0].PerPage)
	assert.Equal(t, domain.MediaKindVideo, src.calls[0].Kind)
	for _, c := range res.Results {
		assert.Equal(t, StrategyPrimary, c.Strategy)
		assert.Greater(t, c.Score, 0.0)
	}
}

func TestMediaSearchService_StarvationCascade(t *testing.T) {
	src := newFakeSource()
	src.results["beautiful sunset ocean waves crashing"] = []domain.MediaCandidate{video("v1", 1920, 1080, 10)}
	src.errs["beautiful sunset"] = fmt.Errorf("%w: status 503", source.ErrUnavailable)
	src.results["waves crashing"] = []domain.MediaCandidate{video("v1", 1920, 1080, 10), video("v2", 1920, 1080, 10)}
	src.results["sunset"] = []domain.MediaCandidate{video("v3", 1280, 720, 10)}
	src.results["beautiful sunset ocean"] = []domain.MediaCandidate{video("v4", 1920, 1080, 12), video("v5", 3840, 2160, 12)}
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: cascadePrompt, Count: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"beautiful sunset ocean waves crashing",
		"beautiful sunset",
		"waves crashing",
		"sunset over ocean",
		"sunset",
		"beautiful sunset ocean",
	}, src.queries())

	assert.Equal(t, StateSatisfied, res.State)
	assert.Len(t, res.Results, 4)
	assert.Equal(t, "beautiful sunset ocean", res.QueryUsed)
	assert.Equal(t, "v5", res.Results[0].ID, "best scored first")
	assert.NotContains(t, ids(res.Results), "v3", "lowest score is cut")

	reports := res.Strategies
	require.Len(t, reports, 6)
	assert.Equal(t, StrategyPhrase, reports[1].Strategy)
	assert.Contains(t, reports[1].Error, "unavailable")
	assert.Equal(t, 2, reports[2].Returned)
	assert.Equal(t, 1, reports[2].Added)
	assert.Equal(t, StrategySubject, reports[4].Strategy)
	assert.Equal(t, StrategySimplified, reports[5].Strategy)

	assert.Equal(t, 12, src.calls[0].PerPage)
	for _, c := range src.calls[1:] {
		assert.Nil(t, c.Params, "fallback queries carry no filters")
		assert.Equal(t, 8, c.PerPage)
	}
}

func TestMediaSearchService_PhraseStopFactor(t *testing.T) {
	src := newFakeSource()
	src.results["beautiful sunset ocean waves crashing"] = videos("p", 1)
	src.results["beautiful sunset"] = videos("b", 10)
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: cascadePrompt, Count: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"beautiful sunset ocean waves crashing", "beautiful sunset"}, src.queries())
	assert.Len(t, res.Results, 2)
	assert.Equal(t, StateSatisfied, res.State)
}

func TestMediaSearchService_Exhausted(t *testing.T) {
	src := newFakeSource()
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: cascadePrompt, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, StateExhausted, res.State)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.Equal(t, res.Query, res.QueryUsed)
	assert.Len(t, res.Strategies, 6)
}

func TestMediaSearchService_AllProvidersFail(t *testing.T) {
	src := newFakeSource()
	for _, q := range []string{
		"beautiful sunset ocean waves crashing", "beautiful sunset", "waves crashing",
		"sunset over ocean", "sunset", "beautiful sunset ocean",
	} {
		src.errs[q] = source.ErrUnavailable
	}
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: cascadePrompt, Count: 2})
	require.NoError(t, err, "provider errors never fail the search")
	assert.Equal(t, StateExhausted, res.State)
	for _, r := range res.Strategies {
		assert.NotEmpty(t, r.Error)
	}
}

func TestMediaSearchService_DedupeAndTruncate(t *testing.T) {
	src := newFakeSource()
	src.results["peaceful ocean waves sunset"] = []domain.MediaCandidate{
		video("a", 1920, 1080, 10),
		video("a", 3840, 2160, 10),
		video("", 3840, 2160, 10),
		video("b", 1920, 1080, 10),
		video("short", 3840, 2160, 2),
		video("c", 1280, 720, 10),
		video("d", 1280, 720, 10),
	}
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	req := SearchRequest{Prompt: "peaceful ocean waves at sunset", Count: 3}
	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, ids(first.Results))
	assert.Equal(t, 1920, first.Results[0].Width, "first occurrence wins")
	assert.Equal(t, ids(first.Results), ids(second.Results), "ranking is deterministic")
	assert.Equal(t, 4, first.Strategies[0].Added)
}

func TestMediaSearchService_RankingTieBreaks(t *testing.T) {
	src := newFakeSource()
	src.results["peaceful ocean waves sunset"] = []domain.MediaCandidate{
		video("hd-10", 1280, 720, 10),
		video("fhd-10", 1920, 1080, 10),
		video("fhd-25", 1920, 1080, 25),
		video("hd-12", 1280, 720, 12),
	}
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: "peaceful ocean waves at sunset", Count: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"fhd-10", "fhd-25", "hd-12", "hd-10"}, ids(res.Results))
}

func TestMediaSearchService_MinDuration(t *testing.T) {
	src := newFakeSource()
	src.results["peaceful ocean waves sunset"] = []domain.MediaCandidate{
		video("short", 1920, 1080, 4),
		video("long", 1920, 1080, 12),
	}
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: "peaceful ocean waves at sunset", Count: 1, MinDuration: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, ids(res.Results))
	assert.Equal(t, 5, res.MinDuration)
}

func TestMediaSearchService_Images(t *testing.T) {
	src := newFakeSource()
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	prompt := "a very detailed photograph of majestic snowy mountain peaks under clear blue sky at golden sunrise"
	res, err := svc.Search(context.Background(), SearchRequest{Prompt: prompt, Count: 2, Kind: domain.MediaKindImage})
	require.NoError(t, err)

	terms := strings.Fields(res.Query)
	assert.Len(t, terms, 6, "long image prompts are condensed")
	assert.Subset(t, terms, []string{"majestic", "golden", "sunrise"})
	assert.Zero(t, res.MinDuration)
	require.NotEmpty(t, src.calls)
	assert.Equal(t, res.Query, src.calls[0].Text)
	assert.Equal(t, domain.MediaKindImage, src.calls[0].Kind)

	src.results["ocean"] = []domain.MediaCandidate{
		{ID: "i1", Kind: domain.MediaKindImage, Width: 1600, Height: 900},
		{ID: "i2", Kind: domain.MediaKindImage, Width: 1200, Height: 1200},
	}
	res, err = svc.Search(context.Background(), SearchRequest{Prompt: "ocean", Count: 2, Kind: domain.MediaKindImage})
	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "i2"}, ids(res.Results), "images need no duration")
}

func TestMediaSearchService_InvalidInput(t *testing.T) {
	src := newFakeSource()
	svc := NewMediaSearchService(src, nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), SearchRequest{Prompt: "  ", Count: 3})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Search(context.Background(), SearchRequest{Prompt: "ocean", Count: 3, Kind: "audio"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Browse(context.Background(), SearchRequest{Prompt: "", Count: 3})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Empty(t, src.calls)
}

func TestMediaSearchService_ZeroCount(t *testing.T) {
	src := newFakeSource()
	learner := &fakeLearner{}
	svc := NewMediaSearchService(src, nil, learner, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: "ocean waves", Count: 0})
	require.NoError(t, err)
	assert.Equal(t, StateSatisfied, res.State)
	assert.Empty(t, res.Results)
	assert.Empty(t, src.calls, "provider never contacted")
	assert.Empty(t, learner.outcomes, "nothing learned")
}

func TestMediaSearchService_LearnedQuery(t *testing.T) {
	src := newFakeSource()
	src.results["beautiful sunset ocean waves crashing"] = []domain.MediaCandidate{
		video("too-short", 1920, 1080, 5),
		video("v1", 1920, 1080, 10),
	}
	src.results["golden beach"] = []domain.MediaCandidate{video("v2", 1920, 1080, 12)}
	learner := &fakeLearner{rec: Recommendation{
		PatternKey:        "sunset_beautiful",
		MinDuration:       8,
		Confidence:        0.9,
		SuccessfulQueries: []string{"golden beach"},
	}}
	svc := NewMediaSearchService(src, nil, learner, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: cascadePrompt, Count: 2})
	require.NoError(t, err)

	assert.Equal(t, 8, res.MinDuration)
	assert.ElementsMatch(t, []string{"v1", "v2"}, ids(res.Results))
	require.GreaterOrEqual(t, len(res.Strategies), 2)
	assert.Equal(t, StrategyLearned, res.Strategies[1].Strategy)
	assert.Equal(t, "golden beach", res.Strategies[1].Query)
	require.NotNil(t, res.Recommendation)
	assert.Equal(t, "sunset_beautiful", res.Recommendation.PatternKey)

	require.Len(t, learner.outcomes, 1)
	o := learner.outcomes[0]
	assert.True(t, o.Success)
	assert.Equal(t, "golden beach", o.Query)
	assert.Equal(t, 2, o.Requested)
	assert.Equal(t, 2, o.ResultCount)
	assert.Len(t, o.Candidates, 2)
}

func TestMediaSearchService_LearnedQueryNeedsConfidence(t *testing.T) {
	src := newFakeSource()
	learner := &fakeLearner{rec: Recommendation{Confidence: 0.7, SuccessfulQueries: []string{"golden beach"}}}
	svc := NewMediaSearchService(src, nil, learner, nil, nil)

	_, err := svc.Search(context.Background(), SearchRequest{Prompt: cascadePrompt, Count: 2})
	require.NoError(t, err)
	assert.NotContains(t, src.queries(), "golden beach")
	require.Len(t, learner.outcomes, 1)
	assert.False(t, learner.outcomes[0].Success)
}

func TestMediaSearchService_RecordErrorIgnored(t *testing.T) {
	src := newFakeSource()
	src.results["ocean"] = videos("o", 2)
	learner := &fakeLearner{err: errors.New("store offline")}
	svc := NewMediaSearchService(src, nil, learner, nil, nil)

	res, err := svc.Search(context.Background(), SearchRequest{Prompt: "ocean", Count: 2})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
}

func TestMediaSearchService_LearningAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "learning_data.json")
	prompt := "peaceful sunset sky"

	src := newFakeSource()
	src.results["peaceful sunset sky"] = []domain.MediaCandidate{video("s1", 1920, 1080, 12)}

	first := NewOutcomeLearner(ctx, repository.NewFileLearningStore(path), nil, nil, nil)
	svc := NewMediaSearchService(src, nil, first, nil, nil)
	for i := 0; i < 5; i++ {
		res, err := svc.Search(ctx, SearchRequest{Prompt: prompt, Count: 1})
		require.NoError(t, err)
		require.Equal(t, StateSatisfied, res.State)
	}

	second := NewOutcomeLearner(ctx, repository.NewFileLearningStore(path), nil, nil, nil)
	rec := second.RecommendFor(prompt)
	assert.Equal(t, "sunset_peaceful", rec.PatternKey)
	assert.Equal(t, 5, rec.Occurrences)
	assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
	assert.Equal(t, 6, rec.MinDuration)

	// The trusted query is tried right after a starved primary query.
	starved := newFakeSource()
	starved.results["peaceful sunset sky"] = []domain.MediaCandidate{video("s1", 1920, 1080, 12)}
	svc = NewMediaSearchService(starved, nil, second, nil, nil)
	_, err := svc.Search(ctx, SearchRequest{Prompt: "calm peaceful sunset", Count: 3})
	require.NoError(t, err)
	queries := starved.queries()
	require.GreaterOrEqual(t, len(queries), 2)
	assert.Equal(t, "peaceful sunset sky", queries[1])
}

func TestMediaSearchService_Browse(t *testing.T) {
	src := newFakeSource()
	src.results["peaceful ocean waves sunset"] = []domain.MediaCandidate{
		video("hd", 1280, 720, 10),
		video("fhd", 1920, 1080, 10),
		video("tiny", 640, 360, 1),
		video("uhd", 3840, 2160, 10),
	}
	learner := &fakeLearner{}
	svc := NewMediaSearchService(src, nil, learner, nil, nil)

	got, err := svc.Browse(context.Background(), SearchRequest{Prompt: "peaceful ocean waves at sunset", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"hd", "fhd"}, ids(got), "provider order, no ranking")
	assert.Len(t, src.calls, 1)
	assert.Equal(t, 2, src.calls[0].PerPage)
	assert.Empty(t, learner.outcomes)

	none, err := svc.Browse(context.Background(), SearchRequest{Prompt: "ocean", Count: 0})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMediaSearchService_PerPageClamp(t *testing.T) {
	src := newFakeSource()
	cfg := DefaultMediaSearchConfig()
	cfg.PerPageMax = 20
	svc := NewMediaSearchService(src, nil, nil, &cfg, nil)

	_, err := svc.Search(context.Background(), SearchRequest{Prompt: "ocean", Count: 50})
	require.NoError(t, err)
	require.NotEmpty(t, src.calls)
	for _, c := range src.calls {
		assert.LessOrEqual(t, c.PerPage, 20)
	}
}

func TestMediaSearchService_Metrics(t *testing.T) {
	src := newFakeSource()
	src.results["ocean"] = videos("o", 3)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewMediaSearchService(src, nil, nil, nil, m)

	_, err := svc.Search(context.Background(), SearchRequest{Prompt: "ocean", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("video", "satisfied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyAttempts.WithLabelValues(StrategyPrimary)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StrategyCandidates.WithLabelValues(StrategyPrimary)))
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, "ocean", queryKey("ocean", nil))
	assert.Equal(t, "ocean", queryKey("ocean", map[string]string{}))
	assert.Equal(t,
		queryKey("ocean", map[string]string{"size": "large", "color": "black"}),
		queryKey("ocean", map[string]string{"color": "black", "size": "large"}))
	assert.NotEqual(t, queryKey("ocean", nil), queryKey("ocean", map[string]string{"size": "large"}))
}
