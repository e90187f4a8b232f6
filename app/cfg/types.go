package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Provider configuration
	Providers        string
	PerProviderLimit int
	FetchTimeout     int
	YouTubeAPIKey    string

	// Ingestion configuration
	Concurrency         int
	ItemBudget          int
	CacheTTLHours       int
	BreakerThreshold    int
	RetryAttempts       int
	RetryBaseMs         int
	SimilarityThreshold float64
	ReservoirLimit      int
	TopN                int

	// Trend watchlist configuration
	TrendsGeo       string
	TrendsLanguage  string
	TrendsWindow    string
	TrendsMinGrowth float64
	WatchlistMax    int

	// Denylists applied on top of the sources file
	EmojiDenylist string
	TextDenylist  string

	// Application configuration
	SourcesFile       string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
