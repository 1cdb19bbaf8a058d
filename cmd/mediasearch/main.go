package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/reelsearch/internal/app"
	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/service"
	"github.com/timmy/reelsearch/internal/source/staging"
)

func main() {
	// Logs go to stderr so stdout carries only the JSON result.
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "reelsearch-cli",
		Output:      os.Stderr,
	})
	logger.SetDefaultLogger(appLogger)

	prompt := flag.String("prompt", "", "Natural-language description of the wanted media")
	count := flag.Int("count", 5, "Number of results wanted")
	kind := flag.String("kind", "video", "Media kind: video or image")
	minDuration := flag.Int("min-duration", 0, "Minimum clip length in seconds (video only)")
	provider := flag.String("provider", "", "Override provider: pexels or staging")
	catalog := flag.String("catalog", "", "Staging catalog name (with -provider staging)")
	browse := flag.Bool("browse", false, "Run the primary query only, without ranking or learning")
	analyze := flag.Bool("analyze", false, "Print the learner's analysis of the prompt instead of searching")
	listCatalogs := flag.Bool("catalogs", false, "List staging catalogs with their item counts and exit")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	if *listCatalogs {
		writeJSON(appLogger, catalogCounts(appLogger, cfg.Provider.StagingPath))
		return
	}

	if *prompt == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *provider != "" {
		cfg.Provider.Name = *provider
	}
	if *catalog != "" {
		cfg.Provider.Catalog = *catalog
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		appLogger.Info("Received shutdown signal, cancelling...")
		cancel()
	}()

	core, err := app.Build(ctx, cfg, nil)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize search core")
	}
	defer core.Close()

	req := service.SearchRequest{
		Prompt:      *prompt,
		Count:       *count,
		Kind:        domain.MediaKind(*kind),
		MinDuration: *minDuration,
	}

	var out interface{}
	switch {
	case *analyze:
		out = core.Learner.Analyze(*prompt)
	case *browse:
		results, err := core.Search.Browse(ctx, req)
		if err != nil {
			appLogger.WithError(err).Fatal("Browse failed")
		}
		out = map[string]interface{}{"results": results, "total": len(results)}
	default:
		result, err := core.Search.Search(ctx, req)
		if err != nil {
			appLogger.WithError(err).Fatal("Search failed")
		}
		out = result
	}

	writeJSON(appLogger, out)
}

// catalogCounts maps each staging catalog under basePath to its item count.
// Unreadable catalogs are reported with -1.
func catalogCounts(appLogger *logger.Logger, basePath string) map[string]int {
	names, err := staging.ListStagingSources(basePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to list staging catalogs")
	}
	counts := make(map[string]int, len(names))
	for _, name := range names {
		n, err := staging.NewAdapter(basePath, name).GetTotalCount()
		if err != nil {
			appLogger.WithError(err).WithField("catalog", name).Warn("Catalog unreadable")
			n = -1
		}
		counts[name] = n
	}
	return counts
}

func writeJSON(appLogger *logger.Logger, v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		appLogger.WithError(err).Fatal("Failed to write result")
	}
}
