package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timmy/reelsearch/internal/api/handler"
	"github.com/timmy/reelsearch/internal/api/middleware"
	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/logger"
)

// Dependencies are the services the HTTP surface exposes.
type Dependencies struct {
	Searcher  handler.MediaSearcher
	Learner   handler.Learner
	Provider  string
	Tokenizer string
	// Gatherer serves /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Dependencies, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler(deps.Provider, deps.Tokenizer)
	mediaHandler := handler.NewMediaHandler(deps.Searcher)
	learningHandler := handler.NewLearningHandler(deps.Learner)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Media
		v1.POST("/media/search", mediaHandler.Search)
		v1.POST("/media/browse", mediaHandler.Browse)

		// Learning
		v1.POST("/learning/analyze", learningHandler.Analyze)
		v1.GET("/learning/insights", learningHandler.Insights)
		v1.GET("/learning/similar", learningHandler.Similar)
		v1.GET("/learning/suggestions", learningHandler.Suggestions)
		v1.GET("/learning/patterns/:key", learningHandler.Recommendation)

		// Feedback
		v1.POST("/feedback", learningHandler.Feedback)
	}

	return r
}
