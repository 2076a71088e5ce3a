package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
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
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
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
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

// fingerprintAllowed accepts every key when allowed is empty.
func fingerprintAllowed(allowed []string, fingerprint string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, fp := range allowed {
		if strings.EqualFold(fp, fingerprint) {
			return true
		}
	}
	return false
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:   cfg.TracingEnabled,
		Endpoint:  cfg.OTLPEndpoint,
		Component: "ssh",
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

	if len(cfg.SSHAllowedFingerprints) == 0 {
		log.Println("Warning: SSH_ALLOWED_FINGERPRINTS not set, accepting any public key")
	}

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			if !fingerprintAllowed(cfg.SSHAllowedFingerprints, fingerprint) {
				log.Printf("SSH auth denied: user=%s fingerprint=%s", ctx.User(), fingerprint)
				return false
			}
			log.Printf("SSH auth accepted: user=%s fingerprint=%s", ctx.User(), fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				rng := domain.DefaultRange(time.Now().UTC(), cfg.DefaultRangeDays)
				ctrl := dashboard.NewController(s.Context(), trendService, domain.Bitcoin, rng)
				go func() {
					<-s.Context().Done()
					ctrl.Close()
				}()

				model := tui.NewModel(ctrl, fmt.Sprintf("trendboard · %s", s.User()))
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
