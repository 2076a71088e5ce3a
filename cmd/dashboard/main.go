package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"trendboard/internal/aggregate"
	"trendboard/internal/cache"
	"trendboard/internal/config"
	"trendboard/internal/dashboard"
	"trendboard/internal/domain"
	"trendboard/internal/provider"
	"trendboard/internal/service"
	"trendboard/internal/tui"
	"trendboard/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

const usage = "usage: go run ./cmd/dashboard [asset] [days]"

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
	logToFileFunc  = tea.LogToFile
	runProgramFunc = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}
)

// parseArgs reads the optional asset and day count.
func parseArgs(args []string, defaultDays int) (domain.Asset, int, error) {
	asset := domain.Bitcoin
	days := defaultDays
	if days <= 0 {
		days = 7
	}
	if len(args) > 0 {
		a, err := domain.ParseAsset(args[0])
		if err != nil {
			return "", 0, err
		}
		asset = a
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return "", 0, fmt.Errorf("invalid days: %q", args[1])
		}
		days = n
	}
	return asset, days, nil
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	asset, days, err := parseArgs(os.Args[1:], cfg.DefaultRangeDays)
	if err != nil {
		log.Fatalf("%v\n%s", err, usage)
	}

	if f, err := logToFileFunc("dashboard.log", "trendboard"); err == nil {
		defer f.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:   cfg.TracingEnabled,
		Endpoint:  cfg.OTLPEndpoint,
		Component: "dashboard",
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

	ctrl := dashboard.NewController(ctx, trendService, asset, domain.DefaultRange(time.Now().UTC(), days))
	defer ctrl.Close()

	if err := runProgramFunc(tui.NewModel(ctrl, "trendboard")); err != nil {
		log.Fatalf("dashboard exited with error: %v", err)
	}
}
