package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/signal-comb.db" description:"Path to the SQLite database file"`

	// Provider configuration
	Providers        string `long:"providers" env:"PROVIDERS" default:"reddit,hn,trends,rss" description:"Comma-separated list of enabled discovery providers"`
	PerProviderLimit int    `long:"per-provider-limit" env:"PER_PROVIDER_LIMIT" default:"100" description:"Maximum items requested from each provider per cycle"`
	FetchTimeout     int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"HTTP fetch timeout in seconds"`
	YouTubeAPIKey    string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key (youtube provider disabled when empty)"`

	// Ingestion configuration
	Concurrency         int     `long:"concurrency" env:"CONCURRENCY" default:"3" description:"Maximum provider fetches in flight"`
	ItemBudget          int     `long:"item-budget" env:"ITEM_BUDGET" default:"0" description:"Total item budget per cycle (0 derives providers x per-provider limit)"`
	CacheTTLHours       int     `long:"cache-ttl-hours" env:"CACHE_TTL_HOURS" default:"24" description:"Reservoir cache TTL in hours (0 disables caching)"`
	BreakerThreshold    int     `long:"breaker-threshold" env:"BREAKER_THRESHOLD" default:"3" description:"Consecutive failures before a provider's circuit opens"`
	RetryAttempts       int     `long:"retry-attempts" env:"RETRY_ATTEMPTS" default:"3" description:"Fetch attempts per provider"`
	RetryBaseMs         int     `long:"retry-base-ms" env:"RETRY_BASE_MS" default:"400" description:"Base retry backoff in milliseconds"`
	SimilarityThreshold float64 `long:"similarity-threshold" env:"SIMILARITY_THRESHOLD" default:"0.92" description:"Jaccard similarity above which rows are duplicates"`
	ReservoirLimit      int     `long:"reservoir-limit" env:"RESERVOIR_LIMIT" default:"500" description:"Maximum rows returned from a reservoir build"`
	TopN                int     `long:"top-n" env:"TOP_N" default:"10" description:"Number of top candidates surfaced per extractor"`

	// Trend watchlist configuration
	TrendsGeo       string  `long:"trends-geo" env:"TRENDS_GEO" default:"US" description:"Geo code for trend lookups"`
	TrendsLanguage  string  `long:"trends-language" env:"TRENDS_LANGUAGE" default:"en-US" description:"Language for trend lookups"`
	TrendsWindow    string  `long:"trends-window" env:"TRENDS_WINDOW" default:"now 7-d" description:"Time window for rising query lookups"`
	TrendsMinGrowth float64 `long:"trends-min-growth" env:"TRENDS_MIN_GROWTH" default:"50" description:"Growth percentage that promotes a rising query"`
	WatchlistMax    int     `long:"watchlist-max" env:"WATCHLIST_MAX" default:"50" description:"Maximum watchlist size (oldest evicted first)"`

	// Denylists applied on top of the sources file
	EmojiDenylist string `long:"emoji-denylist" env:"EMOJI_DENYLIST" description:"Comma-separated emoji excluded from candidate extraction"`
	TextDenylist  string `long:"text-denylist" env:"TEXT_DENYLIST" description:"Comma-separated substrings that reject reservoir rows"`

	// Application configuration
	SourcesFile       string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"Path to the YAML sources file"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for ingestion tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Signal Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		Providers:           raw.Providers,
		PerProviderLimit:    raw.PerProviderLimit,
		FetchTimeout:        raw.FetchTimeout,
		YouTubeAPIKey:       raw.YouTubeAPIKey,
		Concurrency:         raw.Concurrency,
		ItemBudget:          raw.ItemBudget,
		CacheTTLHours:       raw.CacheTTLHours,
		BreakerThreshold:    raw.BreakerThreshold,
		RetryAttempts:       raw.RetryAttempts,
		RetryBaseMs:         raw.RetryBaseMs,
		SimilarityThreshold: raw.SimilarityThreshold,
		ReservoirLimit:      raw.ReservoirLimit,
		TopN:                raw.TopN,
		TrendsGeo:           raw.TrendsGeo,
		TrendsLanguage:      raw.TrendsLanguage,
		TrendsWindow:        raw.TrendsWindow,
		TrendsMinGrowth:     raw.TrendsMinGrowth,
		WatchlistMax:        raw.WatchlistMax,
		EmojiDenylist:       raw.EmojiDenylist,
		TextDenylist:        raw.TextDenylist,
		SourcesFile:         raw.SourcesFile,
		Port:                raw.Port,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		APIAccessKey:        raw.APIAccessKey,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
