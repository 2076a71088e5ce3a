package handler

import (
	"context"
	"time"

	"trendboard/internal/domain"
	"trendboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type TrendLister interface {
	ListTrends(ctx context.Context, crypto string) ([]domain.SentimentRecord, error)
}

type SeriesProvider interface {
	DailySeries(ctx context.Context, asset domain.Asset, start, end time.Time) (sentiment, prices domain.DailySeries)
}

type CollectRunner interface {
	RunNow(ctx context.Context) (service.CollectResult, error)
	Backfill(ctx context.Context, start, end time.Time) (service.BackfillResult, error)
}

type Handler struct {
	tracer           trace.Tracer
	trends           TrendLister
	series           SeriesProvider
	collector        CollectRunner
	policy           string
	defaultRangeDays int
	now              func() time.Time
}

func New(tracer trace.Tracer, trends TrendLister, series SeriesProvider, policy string, defaultRangeDays int) *Handler {
	if defaultRangeDays <= 0 {
		defaultRangeDays = 7
	}
	return &Handler{
		tracer:           tracer,
		trends:           trends,
		series:           series,
		policy:           policy,
		defaultRangeDays: defaultRangeDays,
		now:              time.Now,
	}
}

// SetCollectRunner enables POST /api/collect.
func (h *Handler) SetCollectRunner(r CollectRunner) {
	h.collector = r
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)
	r.GET("/trends", h.ListTrends)
	r.GET("/api/assets", h.ListAssets)
	r.GET("/api/dashboard", h.Dashboard)
	r.POST("/api/collect", APIKeyAuth(apiKey), h.TriggerCollect)
}
