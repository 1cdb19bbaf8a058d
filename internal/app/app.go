// Package app assembles the search core from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/repository"
	"github.com/timmy/reelsearch/internal/service"
	"github.com/timmy/reelsearch/internal/source"
	"github.com/timmy/reelsearch/internal/source/pexels"
	"github.com/timmy/reelsearch/internal/source/staging"
)

// Core is the wired search core shared by the API server and the CLI.
type Core struct {
	Source    source.Source
	Tokenizer service.Tokenizer
	Learner   *service.OutcomeLearner
	Search    *service.MediaSearchService
	Metrics   *metrics.Metrics

	closeStore func() error
}

// Build wires provider, learning store, learner and search service from cfg.
// Parameters:
//   - ctx: context for loading learned state.
//   - cfg: loaded configuration.
//   - m: metrics sink; may be nil.
// Returns:
//   - *Core: ready-to-use components; call Close when done.
//   - error: non-nil when the provider or store cannot be created.
func Build(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Core, error) {
	src, err := NewSource(&cfg.Provider)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := NewLearningStore(cfg)
	if err != nil {
		return nil, err
	}

	tok := service.NewTokenizer(cfg.Search.Tokenizer)
	learnerCfg := LearnerConfig(cfg.Learning)
	learner := service.NewOutcomeLearner(ctx, store, tok, &learnerCfg, m)

	searchCfg := SearchConfig(cfg)
	search := service.NewMediaSearchService(src, tok, learner, &searchCfg, m)

	return &Core{
		Source:     src,
		Tokenizer:  tok,
		Learner:    learner,
		Search:     search,
		Metrics:    m,
		closeStore: closeStore,
	}, nil
}

// Close releases the learning store.
func (c *Core) Close() error {
	if c.closeStore == nil {
		return nil
	}
	return c.closeStore()
}

// NewSource creates the configured stock media provider.
func NewSource(cfg *config.ProviderConfig) (source.Source, error) {
	if err := cfg.ValidateWithAPIKey(); err != nil {
		return nil, err
	}
	switch cfg.Name {
	case "staging":
		return staging.NewAdapter(cfg.StagingPath, cfg.Catalog), nil
	default:
		return pexels.NewAdapter(&pexels.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	}
}

// NewLearningStore opens the configured learning store. The returned close
// function is never nil.
func NewLearningStore(cfg *config.Config) (repository.LearningStore, func() error, error) {
	switch cfg.Learning.Store {
	case "", "file":
		return repository.NewFileLearningStore(cfg.Learning.Path), func() error { return nil }, nil
	case "database":
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		closeFn := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return repository.NewGormLearningStore(db), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("learning: unknown store %q", cfg.Learning.Store)
	}
}

// LearnerConfig maps the learning section onto learner bounds, keeping the
// defaults for anything left unset.
func LearnerConfig(cfg config.LearningConfig) service.LearnerConfig {
	out := service.DefaultLearnerConfig()
	if cfg.SessionWindow > 0 {
		out.SessionWindow = cfg.SessionWindow
	}
	if cfg.FeedbackWindow > 0 {
		out.FeedbackWindow = cfg.FeedbackWindow
	}
	if cfg.HighConfidenceSuccesses > 0 {
		out.HighConfidenceSuccesses = cfg.HighConfidenceSuccesses
	}
	return out
}

// SearchConfig maps the search and provider sections onto cascade tunables.
func SearchConfig(cfg *config.Config) service.MediaSearchConfig {
	out := service.DefaultMediaSearchConfig()
	s := cfg.Search
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setInt(&out.OverfetchFactor, s.OverfetchFactor)
	setInt(&out.FallbackFactor, s.FallbackFactor)
	setInt(&out.PhraseStopFactorVideo, s.PhraseStopFactorVideo)
	setInt(&out.PhraseStopFactorImage, s.PhraseStopFactorImage)
	setInt(&out.MaxPhraseQueries, s.MaxPhraseQueries)
	setInt(&out.SimplifiedTerms, s.SimplifiedTerms)
	setInt(&out.DefaultMinDuration, s.DefaultMinDuration)
	setInt(&out.KeywordLimit, s.KeywordLimit)
	setInt(&out.LongPromptWords, s.LongPromptWords)
	setInt(&out.PerPageMax, cfg.Provider.PerPage)
	if s.LearnedQueryConfidence > 0 {
		out.LearnedQueryConfidence = s.LearnedQueryConfidence
	}
	return out
}
