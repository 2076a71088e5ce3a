package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"trendboard/internal/sentiment"
)

type Config struct {
	HTTPPort      int
	TrendsAPIBase string
	CoinGeckoBase string
	PushshiftBase string
	DatabaseURL   string
	SQLitePath    string
	RedisURL      string
	APIKey        string

	AggregationPolicy string
	DefaultRangeDays  int

	CollectCron        string
	CollectOnStart     bool
	RedditSubreddit    string
	RedditLimit        int
	RedditCommentLimit int
	AssetKeywordsFile  string
	AssetKeywords      []sentiment.AssetKeyword

	OpenAIAPIKey string
	OpenAIModel  string

	TelegramBotToken string

	SSHPort                int
	SSHHostKeyPath         string
	SSHAllowedFingerprints []string

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		APIKey:           os.Getenv("API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	cfg.HTTPPort = positiveInt("HTTP_PORT", 5000)

	cfg.TrendsAPIBase = strings.TrimRight(strings.TrimSpace(os.Getenv("TRENDS_API_BASE")), "/")
	if cfg.TrendsAPIBase == "" {
		cfg.TrendsAPIBase = "http://127.0.0.1:5000"
	}

	cfg.CoinGeckoBase = strings.TrimRight(strings.TrimSpace(os.Getenv("COINGECKO_BASE")), "/")
	if cfg.CoinGeckoBase == "" {
		cfg.CoinGeckoBase = "https://api.coingecko.com/api/v3"
	}

	cfg.PushshiftBase = strings.TrimRight(strings.TrimSpace(os.Getenv("PUSHSHIFT_BASE")), "/")
	if cfg.PushshiftBase == "" {
		cfg.PushshiftBase = "https://api.pushshift.io"
	}

	cfg.SQLitePath = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "trend_data.db"
	}
	if cfg.DatabaseURL == "" {
		log.Printf("Warning: DATABASE_URL not set, using sqlite store at %s", cfg.SQLitePath)
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, market chart cache disabled")
	}

	cfg.AggregationPolicy = strings.ToLower(strings.TrimSpace(os.Getenv("AGGREGATION_POLICY")))
	switch cfg.AggregationPolicy {
	case "", "order", "last-by-order":
		cfg.AggregationPolicy = "order"
	case "timestamp", "last-by-timestamp":
		cfg.AggregationPolicy = "timestamp"
	default:
		log.Printf("Warning: unsupported AGGREGATION_POLICY=%q, defaulting to order", cfg.AggregationPolicy)
		cfg.AggregationPolicy = "order"
	}

	cfg.DefaultRangeDays = positiveInt("DEFAULT_RANGE_DAYS", 7)

	cfg.CollectCron = strings.TrimSpace(os.Getenv("COLLECT_CRON"))
	if cfg.CollectCron == "" {
		cfg.CollectCron = "0 */6 * * *"
	}
	cfg.CollectOnStart = strings.EqualFold(strings.TrimSpace(os.Getenv("COLLECT_ON_START")), "true")

	cfg.RedditSubreddit = strings.TrimSpace(os.Getenv("REDDIT_SUBREDDIT"))
	if cfg.RedditSubreddit == "" {
		cfg.RedditSubreddit = "CryptoCurrency"
	}
	cfg.RedditLimit = positiveInt("REDDIT_LIMIT", 100)
	if cfg.RedditLimit > 100 {
		cfg.RedditLimit = 100
	}
	cfg.RedditCommentLimit = positiveInt("REDDIT_COMMENT_LIMIT", 5)

	cfg.AssetKeywords = sentiment.DefaultKeywords
	cfg.AssetKeywordsFile = strings.TrimSpace(os.Getenv("ASSET_KEYWORDS_FILE"))
	if cfg.AssetKeywordsFile != "" {
		kws, err := sentiment.LoadKeywords(cfg.AssetKeywordsFile)
		if err != nil {
			log.Printf("Warning: %v, using default asset keywords", err)
		} else {
			cfg.AssetKeywords = kws
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, using lexicon sentiment only")
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}

	cfg.SSHPort = positiveInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}
	for _, fp := range strings.Split(os.Getenv("SSH_ALLOWED_FINGERPRINTS"), ",") {
		if fp = strings.TrimSpace(fp); fp != "" {
			cfg.SSHAllowedFingerprints = append(cfg.SSHAllowedFingerprints, fp)
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}
	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = positiveInt("MCP_REQUEST_TIMEOUT_SECS", 10)
	cfg.MCPRateLimitPerMin = positiveInt("MCP_RATE_LIMIT_PER_MIN", 60)

	cfg.TracingEnabled = true
	if v := strings.TrimSpace(os.Getenv("TRACING_ENABLED")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TracingEnabled = b
		}
	}

	return cfg
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, v, def)
	}
	return def
}
