package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/service"
	"github.com/timmy/reelsearch/internal/source/staging"
)

func stagingConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "demo"), 0o755))
	manifest := `{"id":"a","kind":"video","width":1920,"height":1080,"duration":12,"url":"https://cdn.test/a.mp4","tags":["forest"]}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "demo", staging.ManifestFileName), []byte(manifest), 0o644))

	return &config.Config{
		Provider: config.ProviderConfig{Name: "staging", StagingPath: base, Catalog: "demo"},
		Search:   config.SearchConfig{Tokenizer: service.TokenizerNaive},
		Learning: config.LearningConfig{Store: "file", Path: filepath.Join(t.TempDir(), "learning.json")},
	}
}

func TestBuild_Staging(t *testing.T) {
	ctx := context.Background()
	cfg := stagingConfig(t)

	core, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer core.Close()

	assert.Equal(t, "staging:demo", core.Source.GetSourceID())
	assert.Equal(t, service.TokenizerNaive, core.Tokenizer.Name())

	res, err := core.Search.Search(ctx, service.SearchRequest{Prompt: "quiet forest", Count: 1})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "a", res.Results[0].ID)

	_, err = os.Stat(cfg.Learning.Path)
	assert.NoError(t, err, "outcome persisted to the file store")
}

func TestBuild_DatabaseStore(t *testing.T) {
	ctx := context.Background()
	cfg := stagingConfig(t)
	cfg.Learning.Store = "database"
	cfg.Database = config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "learning.db"),
		AutoMigrate: true,
	}

	core, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = core.Search.Search(ctx, service.SearchRequest{Prompt: "forest", Count: 1})
	require.NoError(t, err)
	require.NoError(t, core.Close())

	reopened, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, reopened.Learner.Insights().TotalGenerations)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown provider", func(c *config.Config) { c.Provider.Name = "vimeo" }},
		{"pexels without key", func(c *config.Config) {
			c.Provider = config.ProviderConfig{Name: "pexels", BaseURL: "https://api.pexels.com", Timeout: 1, PerPage: 80}
		}},
		{"staging without catalog", func(c *config.Config) { c.Provider.Catalog = "" }},
		{"unknown store", func(c *config.Config) { c.Learning.Store = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := stagingConfig(t)
			tt.mutate(cfg)
			_, err := Build(context.Background(), cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestLearnerConfig_KeepsDefaults(t *testing.T) {
	got := LearnerConfig(config.LearningConfig{SessionWindow: 50})
	want := service.DefaultLearnerConfig()
	want.SessionWindow = 50
	assert.Equal(t, want, got)
}

func TestSearchConfig_Mapping(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{PerPage: 40},
		Search: config.SearchConfig{
			OverfetchFactor:        4,
			LearnedQueryConfidence: 0.9,
			DefaultMinDuration:     5,
		},
	}
	got := SearchConfig(cfg)
	assert.Equal(t, 4, got.OverfetchFactor)
	assert.Equal(t, 0.9, got.LearnedQueryConfidence)
	assert.Equal(t, 5, got.DefaultMinDuration)
	assert.Equal(t, 40, got.PerPageMax)
	assert.Equal(t, service.DefaultMediaSearchConfig().FallbackFactor, got.FallbackFactor)
}
