package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trendboard/internal/aggregate"
	"trendboard/internal/cache"
	"trendboard/internal/config"
	"trendboard/internal/mcpserver"
	"trendboard/internal/provider"
	"trendboard/internal/service"
	"trendboard/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initTracerFunc   = tracing.InitTracer
	connectRedisFunc = func(ctx context.Context, addr string) (service.RedisClient, error) {
		return cache.Connect(ctx, addr)
	}
	newTrendsSourceFunc = func(tracer trace.Tracer, baseURL string) service.TrendsSource {
		return provider.NewTrendsProvider(tracer, baseURL)
	}
	newMarketChartFunc = func(tracer trace.Tracer, baseURL string) service.MarketChartSource {
		return provider.NewCoinGeckoProvider(tracer, baseURL)
	}
	runStdioFunc = func(ctx context.Context, server *mcp.Server) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:   cfg.TracingEnabled,
		Endpoint:  cfg.OTLPEndpoint,
		Component: "mcp",
	})
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	var redisClient service.RedisClient
	if cfg.RedisURL != "" {
		client, err := connectRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: %v; market chart cache disabled", err)
		} else {
			redisClient = client
		}
	}

	policy, err := aggregate.ParsePolicy(cfg.AggregationPolicy)
	if err != nil {
		log.Printf("Warning: %v, using %s", err, policy)
	}
	trendService := service.NewTrendService(
		tracer,
		newTrendsSourceFunc(tracer, cfg.TrendsAPIBase),
		newMarketChartFunc(tracer, cfg.CoinGeckoBase),
		redisClient,
		policy,
	)

	tools := mcpserver.NewTools(trendService, time.Duration(cfg.MCPRequestTimeoutSecs)*time.Second, cfg.DefaultRangeDays)
	server := mcpserver.NewServer(tools)

	if cfg.MCPTransport != "http" {
		log.Println("MCP server running on stdio")
		if err := runStdioFunc(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("mcp stdio server: %v", err)
		}
		return
	}

	if cfg.MCPAuthToken == "" {
		log.Println("Warning: MCP_AUTH_TOKEN not set, HTTP transport is unauthenticated")
	}
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.HTTPHandler(server, cfg.MCPAuthToken, provider.PerMinute(cfg.MCPRateLimitPerMin)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("MCP HTTP server listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down MCP server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Printf("MCP server shutdown error: %v", err)
	}
	log.Println("MCP server exited")
}
