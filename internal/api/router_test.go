package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/service"
	"github.com/timmy/reelsearch/internal/source/staging"
)

const catalog = `{"id":"v1","kind":"video","width":1920,"height":1080,"duration":12,"url":"https://cdn.test/v1.mp4","tags":["ocean","waves"]}
{"id":"v2","kind":"video","width":1920,"height":1080,"duration":10,"url":"https://cdn.test/v2.mp4","tags":["sunset"]}
{"id":"v3","kind":"video","width":1920,"height":1080,"duration":10,"url":"https://cdn.test/v3.mp4","tags":["forest"]}
`

type testServer struct {
	router  http.Handler
	learner *service.OutcomeLearner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "demo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "demo", staging.ManifestFileName), []byte(catalog), 0o644))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tok := service.NewTokenizer(service.TokenizerNaive)
	learner := service.NewOutcomeLearner(context.Background(), nil, tok, nil, m)
	src := staging.NewAdapter(base, "demo")
	searcher := service.NewMediaSearchService(src, tok, learner, nil, m)

	router := SetupRouter(Dependencies{
		Searcher:  searcher,
		Learner:   learner,
		Provider:  src.GetSourceID(),
		Tokenizer: tok.Name(),
		Gatherer:  reg,
	}, config.ServerConfig{
		Mode: "test",
		CORS: config.CORSConfig{AllowAllOrigins: true},
	}, logger.GetDefault())

	return &testServer{router: router, learner: learner}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestMediaSearch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/media/search", `{"prompt":"peaceful ocean waves at sunset","count":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body := decode(t, w)
	assert.Equal(t, "satisfied", body["state"])
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, "peaceful ocean waves sunset", body["query"])
	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	var got []string
	for _, r := range results {
		got = append(got, r.(map[string]interface{})["id"].(string))
	}
	assert.ElementsMatch(t, []string{"v1", "v2"}, got)

	assert.Equal(t, 1, s.learner.Insights().TotalGenerations)
}

func TestMediaSearch_Defaults(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/media/search", `{"prompt":"ocean sunset"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "exhausted", body["state"], "default count of five is more than the catalog holds")

	w = s.do(t, http.MethodPost, "/api/v1/media/search", `{"prompt":"ocean sunset","count":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, "satisfied", body["state"])
}

func TestMediaSearch_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing prompt", "/api/v1/media/search", `{"count":2}`},
		{"unknown kind", "/api/v1/media/search", `{"prompt":"ocean","kind":"audio"}`},
		{"malformed json", "/api/v1/media/search", `{"prompt":`},
		{"browse blank prompt", "/api/v1/media/browse", `{"prompt":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestMediaBrowse(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/media/browse", `{"prompt":"sunset over the ocean"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(2), body["total"])
	assert.True(t, s.learner.IsEmpty(), "browsing teaches nothing")
}

func TestLearningEndpoints(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/media/search", `{"prompt":"peaceful ocean waves","count":1}`).Code)

	w := s.do(t, http.MethodPost, "/api/v1/learning/analyze", `{"prompt":"peaceful ocean waves"}`)
	require.Equal(t, http.StatusOK, w.Code)
	analysis := decode(t, w)
	assert.Equal(t, "ocean_peaceful", analysis["pattern_key"])
	assert.Equal(t, "water_scene", analysis["scene_type"])
	assert.Len(t, analysis["similar"], 1)

	w = s.do(t, http.MethodGet, "/api/v1/learning/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	insights := decode(t, w)
	assert.Equal(t, float64(1), insights["total_generations"])
	assert.Equal(t, float64(100), insights["success_rate"])

	w = s.do(t, http.MethodGet, "/api/v1/learning/similar?prompt=calm+peaceful+ocean&limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/v1/learning/patterns/ocean_peaceful", "")
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode(t, w)
	assert.Equal(t, "water_scene", rec["scene_type"])
	assert.Equal(t, float64(1), rec["successes"])
	assert.Equal(t, []interface{}{"peaceful ocean waves"}, rec["successful_queries"])

	w = s.do(t, http.MethodGet, "/api/v1/learning/suggestions?prompt=ocean", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["suggestions"])

	for _, path := range []string{
		"/api/v1/learning/similar",
		"/api/v1/learning/similar?prompt=ocean&limit=abc",
		"/api/v1/learning/similar?prompt=ocean&limit=0",
		"/api/v1/learning/suggestions",
	} {
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path, "").Code, path)
	}
}

func TestFeedback(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/feedback",
		`{"prompt":"golden beach at sunset","query":"golden beach","rating":5,"duration":12,"resolution":"1920x1080"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	stats := s.learner.TrainingStats()
	assert.Equal(t, 1, stats.TotalExamples)
	assert.Equal(t, 1, stats.LearnedPatterns)

	for _, body := range []string{
		`{"prompt":"ocean","rating":9}`,
		`{"prompt":"ocean"}`,
		`{"prompt":"ocean","rating":4,"resolution":"big"}`,
		`{"rating":4}`,
	} {
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/feedback", body).Code, body)
	}
}

func TestHealthMetricsAndCORS(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode(t, w)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "staging:demo", health["provider"])

	s.do(t, http.MethodPost, "/api/v1/media/search", `{"prompt":"ocean","count":1}`)
	w = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reelsearch_searches_total")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/media/search", nil)
	req.Header.Set("Origin", "https://app.test")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
