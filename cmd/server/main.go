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
	"trendboard/internal/bot"
	"trendboard/internal/cache"
	"trendboard/internal/config"
	"trendboard/internal/db"
	"trendboard/internal/handler"
	"trendboard/internal/job"
	"trendboard/internal/metrics"
	"trendboard/internal/provider"
	"trendboard/internal/repository"
	"trendboard/internal/sentiment"
	"trendboard/internal/service"
	"trendboard/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "trendboard/docs"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	openStoreFunc  = openStore
	connectRedisFunc = func(ctx context.Context, addr string) (service.RedisClient, error) {
		return cache.Connect(ctx, addr)
	}
	newPostSourceFunc = func(tracer trace.Tracer) service.PostSource {
		return provider.NewRedditProvider(tracer)
	}
	newArchiveSourceFunc = func(tracer trace.Tracer, baseURL string) service.ArchiveSource {
		return provider.NewPushshiftProvider(tracer, baseURL)
	}
	newMarketChartFunc = func(tracer trace.Tracer, baseURL string) service.MarketChartSource {
		return provider.NewCoinGeckoProvider(tracer, baseURL)
	}
	startCollectorFunc     = func(c *job.Collector, ctx context.Context) { go c.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// openStore picks Postgres when DATABASE_URL is set and the local SQLite
// file otherwise. The returned func releases the store.
func openStore(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (repository.TrendStore, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		migrator, err := repository.NewMigrator(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		applied, err := migrator.Up(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Printf("Postgres store ready (%d migrations applied)", applied)
		return repository.NewTrendRepository(pool, tracer), pool.Close, nil
	}

	store, err := repository.OpenSQLite(cfg.SQLitePath, tracer)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("SQLite store ready at %s", cfg.SQLitePath)
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("error closing sqlite store: %v", err)
		}
	}, nil
}

// @title           Trendboard API
// @version         1.0
// @description     Crypto social sentiment and price dashboard.

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:   cfg.TracingEnabled,
		Endpoint:  cfg.OTLPEndpoint,
		Component: "server",
	})
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Trend store
	store, closeStore, err := openStoreFunc(ctx, cfg, tracer)
	if err != nil {
		log.Fatalf("failed to open trend store: %v", err)
	}
	defer closeStore()

	// Optional Redis cache for market charts
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
		service.StoreTrendsSource(store),
		newMarketChartFunc(tracer, cfg.CoinGeckoBase),
		redisClient,
		policy,
	)

	// Collection pipeline
	var llm sentiment.BatchLLMScorer
	if s := sentiment.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel); s != nil {
		llm = s
		log.Println("LLM sentiment scoring enabled")
	}
	collectService := service.NewCollectService(
		tracer,
		newPostSourceFunc(tracer),
		sentiment.NewDetector(cfg.AssetKeywords),
		sentiment.NewScorer(llm, 0),
		store,
		service.CollectOptions{
			Subreddit:    cfg.RedditSubreddit,
			Limit:        cfg.RedditLimit,
			CommentLimit: cfg.RedditCommentLimit,
		},
	)
	collectService.SetArchive(newArchiveSourceFunc(tracer, cfg.PushshiftBase))
	collector, err := job.NewCollector(tracer, collectService, cfg.CollectCron, cfg.CollectOnStart)
	if err != nil {
		log.Fatalf("failed to create collector: %v", err)
	}
	startCollectorFunc(collector, ctx)

	// Start Telegram bot
	if b := startTelegramBotFunc(cfg.TelegramBotToken, trendService, cfg.DefaultRangeDays); b != nil {
		defer b.Stop()
	}

	// Create handlers and routes
	h := handler.New(tracer, store, trendService, policy.String(), cfg.DefaultRangeDays)
	h.SetCollectRunner(collector)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(metrics.GinMiddleware())

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
