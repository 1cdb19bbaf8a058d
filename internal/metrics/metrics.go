package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects search and learning metrics.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests and tools.
//
// Usage:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.StrategyAttempt("phrase")
//	defer m.ObserveSearch("video", "satisfied", time.Now())
type Metrics struct {
	// SearchesTotal counts completed searches.
	// Labels: kind (video|image), state (satisfied|exhausted)
	SearchesTotal *prometheus.CounterVec

	// SearchDuration measures end-to-end search latency in seconds.
	// Labels: kind
	SearchDuration *prometheus.HistogramVec

	// StrategyAttempts counts provider queries per strategy.
	// Labels: strategy (primary|phrase|learned|subject|simplified)
	StrategyAttempts *prometheus.CounterVec

	// StrategyCandidates counts new unique candidates contributed per strategy.
	// Labels: strategy
	StrategyCandidates *prometheus.CounterVec

	// ProviderErrors counts failed provider queries.
	// Labels: strategy
	ProviderErrors *prometheus.CounterVec

	// OutcomesRecorded counts learner outcomes.
	// Labels: success (true|false)
	OutcomesRecorded *prometheus.CounterVec

	// BackupRuns counts learning-data backup attempts.
	// Labels: result (success|error|restored)
	BackupRuns *prometheus.CounterVec
}

// New creates and registers all metrics with reg.
// Parameters:
//   - reg: registerer; nil registers with the default registry.
// Returns:
//   - *Metrics: registered metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		SearchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelsearch_searches_total",
				Help: "Total number of media searches by kind and final state",
			},
			[]string{"kind", "state"},
		),

		SearchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reelsearch_search_duration_seconds",
				Help:    "Duration of media searches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		),

		StrategyAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelsearch_strategy_attempts_total",
				Help: "Total number of provider queries issued by search strategy",
			},
			[]string{"strategy"},
		),

		StrategyCandidates: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelsearch_strategy_candidates_total",
				Help: "Total number of new unique candidates contributed by search strategy",
			},
			[]string{"strategy"},
		),

		ProviderErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelsearch_provider_errors_total",
				Help: "Total number of failed provider queries by search strategy",
			},
			[]string{"strategy"},
		),

		OutcomesRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelsearch_learning_outcomes_total",
				Help: "Total number of search outcomes recorded by the learner",
			},
			[]string{"success"},
		),

		BackupRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelsearch_learning_backups_total",
				Help: "Total number of learning data backup runs by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveSearch records one finished search.
func (m *Metrics) ObserveSearch(kind, state string, start time.Time) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(kind, state).Inc()
	m.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// StrategyAttempt records one provider query.
func (m *Metrics) StrategyAttempt(strategy string) {
	if m == nil {
		return
	}
	m.StrategyAttempts.WithLabelValues(strategy).Inc()
}

// StrategyYield records how many new candidates a query contributed.
func (m *Metrics) StrategyYield(strategy string, added int) {
	if m == nil || added <= 0 {
		return
	}
	m.StrategyCandidates.WithLabelValues(strategy).Add(float64(added))
}

// ProviderError records one failed provider query.
func (m *Metrics) ProviderError(strategy string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(strategy).Inc()
}

// OutcomeRecorded records one learner outcome.
func (m *Metrics) OutcomeRecorded(success bool) {
	if m == nil {
		return
	}
	m.OutcomesRecorded.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// BackupRun records one backup attempt.
func (m *Metrics) BackupRun(result string) {
	if m == nil {
		return
	}
	m.BackupRuns.WithLabelValues(result).Inc()
}
