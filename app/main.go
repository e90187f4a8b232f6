package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lysyi3m/signal-comb/app/api"
	"github.com/lysyi3m/signal-comb/app/cfg"
	"github.com/lysyi3m/signal-comb/app/config"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/extract"
	"github.com/lysyi3m/signal-comb/app/provider"
	"github.com/lysyi3m/signal-comb/app/reservoir"
	"github.com/lysyi3m/signal-comb/app/tasks"
	"github.com/lysyi3m/signal-comb/app/trends"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting Signal Comb server (version %s)...", appCfg.Version)

	// Database connection
	log.Printf("Opening database at %s...", appCfg.DBPath)
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %v)", version, dirty)

	// Load sources configuration
	log.Printf("Loading sources from %s...", appCfg.SourcesFile)
	sources, err := config.NewLoader(appCfg.SourcesFile).Load()
	if err != nil {
		log.Fatal("Failed to load sources:", err)
	}

	// Initialize repositories
	cacheRepo := database.NewCacheRepository(db)
	healthRepo := database.NewHealthRepository(db)
	noveltyRepo := database.NewNoveltyRepository(db)
	watchlistRepo := database.NewWatchlistRepository(db)

	// Shared HTTP client for all providers
	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.FetchTimeout) * time.Second,
	}

	// Provider registry
	trendsProvider := provider.NewTrends(httpClient, appCfg.UserAgent, appCfg.TrendsGeo, appCfg.TrendsLanguage, appCfg.TrendsWindow)
	registry := provider.NewRegistry(
		provider.NewReddit(httpClient, appCfg.UserAgent, sources.Reddit.Subreddits),
		provider.NewHackerNews(httpClient, appCfg.UserAgent),
		trendsProvider,
		provider.NewYouTube(httpClient, appCfg.UserAgent, appCfg.YouTubeAPIKey, ""),
		provider.NewRSS(httpClient, appCfg.UserAgent, sources.RSS.Feeds),
	)

	providerNames := splitList(appCfg.Providers)
	providers, err := registry.Resolve(providerNames)
	if err != nil {
		log.Fatal("Failed to resolve providers:", err)
	}
	log.Printf("Enabled providers: %s (known: %s)", strings.Join(providerNames, ", "), strings.Join(registry.Known(), ", "))

	// Denylists: sources file entries plus flag/env extras
	textDenylist := append([]string{}, sources.Denylists.Text...)
	textDenylist = append(textDenylist, splitList(appCfg.TextDenylist)...)
	emojiDenylist := append([]string{}, sources.Denylists.Emoji...)
	emojiDenylist = append(emojiDenylist, splitList(appCfg.EmojiDenylist)...)

	// Reservoir builder
	normalizer := reservoir.NewNormalizer(textDenylist, appCfg.SimilarityThreshold)
	builder := reservoir.NewBuilder(providers, cacheRepo, healthRepo, normalizer, reservoir.Options{
		PerProviderLimit: appCfg.PerProviderLimit,
		Concurrency:      appCfg.Concurrency,
		ItemBudget:       appCfg.ItemBudget,
		CacheTTL:         time.Duration(appCfg.CacheTTLHours) * time.Hour,
		BreakerThreshold: appCfg.BreakerThreshold,
		RetryAttempts:    appCfg.RetryAttempts,
		RetryBase:        time.Duration(appCfg.RetryBaseMs) * time.Millisecond,
	})

	// Novelty store and trend promoter
	noveltyStore := extract.NewStore(noveltyRepo)
	promoter := trends.NewPromoter(trendsProvider, cacheRepo, watchlistRepo, trends.Options{
		Seeds:        sources.Trends.Seeds,
		MinGrowth:    appCfg.TrendsMinGrowth,
		MaxWatchlist: appCfg.WatchlistMax,
		CacheTTL:     time.Duration(appCfg.CacheTTLHours) * time.Hour,
	})

	// Initialize and start scheduler
	log.Printf("Starting background scheduler with %d workers...", appCfg.WorkerCount)
	taskScheduler := tasks.NewScheduler(builder, noveltyStore, promoter, emojiDenylist)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(builder, healthRepo, watchlistRepo, providerNames, emojiDenylist, appCfg.ReservoirLimit, appCfg.TopN)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("API endpoints available:")
		log.Printf("  Health check:      http://localhost:%s/health", appCfg.Port)
		log.Printf("  Discovery health:  http://localhost:%s/api/health/discovery", appCfg.Port)
		log.Printf("  Ingest summary:    http://localhost:%s/api/ingest/summary", appCfg.Port)
		log.Printf("  Rebuild reservoir: http://localhost:%s/api/reservoir/rebuild (POST)", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Signal Comb server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("Signal Comb server shutdown complete")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
