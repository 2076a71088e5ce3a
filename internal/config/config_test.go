package config

import (
	"os"
	"path/filepath"
	"testing"
)

var allKeys = []string{
	"HTTP_PORT", "TRENDS_API_BASE", "COINGECKO_BASE", "PUSHSHIFT_BASE", "DATABASE_URL", "SQLITE_PATH",
	"REDIS_URL", "API_KEY", "AGGREGATION_POLICY", "DEFAULT_RANGE_DAYS", "COLLECT_CRON",
	"COLLECT_ON_START", "REDDIT_SUBREDDIT", "REDDIT_LIMIT", "REDDIT_COMMENT_LIMIT",
	"ASSET_KEYWORDS_FILE", "OPENAI_API_KEY", "OPENAI_MODEL", "TELEGRAM_BOT_TOKEN",
	"SSH_PORT", "SSH_HOST_KEY_PATH", "SSH_ALLOWED_FINGERPRINTS", "MCP_TRANSPORT",
	"MCP_HTTP_BIND", "MCP_HTTP_PORT", "MCP_AUTH_TOKEN", "MCP_REQUEST_TIMEOUT_SECS",
	"MCP_RATE_LIMIT_PER_MIN", "TRACING_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.HTTPPort != 5000 {
		t.Fatalf("expected default http port 5000, got %d", cfg.HTTPPort)
	}
	if cfg.TrendsAPIBase != "http://127.0.0.1:5000" {
		t.Fatalf("unexpected trends base %q", cfg.TrendsAPIBase)
	}
	if cfg.PushshiftBase != "https://api.pushshift.io" {
		t.Fatalf("unexpected archive base %q", cfg.PushshiftBase)
	}
	if cfg.SQLitePath != "trend_data.db" || cfg.DatabaseURL != "" {
		t.Fatalf("expected sqlite default store, got %+v", cfg)
	}
	if cfg.AggregationPolicy != "order" || cfg.DefaultRangeDays != 7 {
		t.Fatalf("unexpected aggregation defaults: %q %d", cfg.AggregationPolicy, cfg.DefaultRangeDays)
	}
	if cfg.CollectCron != "0 */6 * * *" || cfg.CollectOnStart {
		t.Fatalf("unexpected collector defaults: %q %v", cfg.CollectCron, cfg.CollectOnStart)
	}
	if cfg.RedditSubreddit != "CryptoCurrency" || cfg.RedditLimit != 100 || cfg.RedditCommentLimit != 5 {
		t.Fatalf("unexpected reddit defaults: %+v", cfg)
	}
	if len(cfg.AssetKeywords) == 0 {
		t.Fatal("expected default asset keywords")
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected mcp defaults: %q %d", cfg.MCPTransport, cfg.MCPHTTPPort)
	}
	if !cfg.TracingEnabled {
		t.Fatal("expected tracing enabled by default")
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("TRENDS_API_BASE", "http://trends.local/")
	t.Setenv("PUSHSHIFT_BASE", " http://archive.local/ ")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("AGGREGATION_POLICY", "Last-By-Timestamp")
	t.Setenv("COLLECT_ON_START", "true")
	t.Setenv("REDDIT_LIMIT", "500")
	t.Setenv("SSH_ALLOWED_FINGERPRINTS", " SHA256:a , ,SHA256:b")
	t.Setenv("MCP_TRANSPORT", "grpc")
	t.Setenv("TRACING_ENABLED", "false")

	cfg := Load()
	if cfg.HTTPPort != 8080 || cfg.TrendsAPIBase != "http://trends.local" || cfg.PushshiftBase != "http://archive.local" {
		t.Fatalf("unexpected http config: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected store config: %+v", cfg)
	}
	if cfg.AggregationPolicy != "timestamp" {
		t.Fatalf("expected timestamp policy, got %q", cfg.AggregationPolicy)
	}
	if !cfg.CollectOnStart || cfg.RedditLimit != 100 {
		t.Fatalf("unexpected collector config: %v %d", cfg.CollectOnStart, cfg.RedditLimit)
	}
	if len(cfg.SSHAllowedFingerprints) != 2 || cfg.SSHAllowedFingerprints[1] != "SHA256:b" {
		t.Fatalf("unexpected fingerprints: %v", cfg.SSHAllowedFingerprints)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %q", cfg.MCPTransport)
	}
	if cfg.TracingEnabled {
		t.Fatal("expected tracing disabled")
	}

	t.Setenv("HTTP_PORT", "bad")
	t.Setenv("AGGREGATION_POLICY", "median")
	cfg = Load()
	if cfg.HTTPPort != 5000 || cfg.AggregationPolicy != "order" {
		t.Fatalf("invalid values should fall back to defaults, got %d %q", cfg.HTTPPort, cfg.AggregationPolicy)
	}
}

func TestLoadKeywordFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("- asset: bitcoin\n  keywords: [sats]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ASSET_KEYWORDS_FILE", path)

	cfg := Load()
	if len(cfg.AssetKeywords) != 1 || cfg.AssetKeywords[0].Keywords[0] != "sats" {
		t.Fatalf("expected keywords from file, got %+v", cfg.AssetKeywords)
	}

	t.Setenv("ASSET_KEYWORDS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg = Load()
	if len(cfg.AssetKeywords) < 5 {
		t.Fatalf("missing file should fall back to defaults, got %+v", cfg.AssetKeywords)
	}
}
