package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"trendboard/internal/aggregate"
	"trendboard/internal/domain"
	"trendboard/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const marketChartCacheTTL = 5 * time.Minute

type TrendsSource interface {
	FetchTrends(ctx context.Context, asset domain.Asset) ([]domain.SentimentRecord, error)
}

// TrendLister is the read side of a trend store.
type TrendLister interface {
	ListTrends(ctx context.Context, crypto string) ([]domain.SentimentRecord, error)
}

type storeTrends struct {
	store TrendLister
}

// StoreTrendsSource reads sentiment rows from a local store instead of a
// remote trends API.
func StoreTrendsSource(store TrendLister) TrendsSource {
	return storeTrends{store: store}
}

func (s storeTrends) FetchTrends(ctx context.Context, asset domain.Asset) ([]domain.SentimentRecord, error) {
	return s.store.ListTrends(ctx, string(asset))
}

type MarketChartSource interface {
	FetchMarketChart(ctx context.Context, asset domain.Asset, days int) ([]domain.PricePoint, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// TrendService fetches sentiment records and prices for an asset and date
// range. Upstream failures are logged and counted and come back as empty
// data, so callers render them the same as "no data".
type TrendService struct {
	tracer trace.Tracer
	trends TrendsSource
	prices MarketChartSource
	redis  RedisClient
	policy aggregate.Policy
}

func NewTrendService(
	tracer trace.Tracer,
	trends TrendsSource,
	prices MarketChartSource,
	redisClient RedisClient,
	policy aggregate.Policy,
) *TrendService {
	return &TrendService{
		tracer: tracer,
		trends: trends,
		prices: prices,
		redis:  redisClient,
		policy: policy,
	}
}

// FetchSentiment returns the asset's records whose created time lies in
// [start, end].
func (s *TrendService) FetchSentiment(ctx context.Context, asset domain.Asset, start, end time.Time) []domain.SentimentRecord {
	ctx, span := s.tracer.Start(ctx, "trend-service.fetch-sentiment")
	defer span.End()
	span.SetAttributes(attribute.String("asset", string(asset)))

	records, err := s.trends.FetchTrends(ctx, asset)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("fetch sentiment for %s: %v", asset, err)
			metrics.RecordFetchError("trends")
		}
		return []domain.SentimentRecord{}
	}

	window := domain.DateRange{Start: start, End: end}
	out := make([]domain.SentimentRecord, 0, len(records))
	for _, r := range records {
		if window.Contains(r.Created) {
			out = append(out, r)
		}
	}
	return out
}

// FetchPrices requests the market chart for the last N days, where N is the
// length of [start, end] rounded up. The upstream window always ends now,
// so ranges in the past return the most recent N days instead.
func (s *TrendService) FetchPrices(ctx context.Context, asset domain.Asset, start, end time.Time) []domain.PricePoint {
	ctx, span := s.tracer.Start(ctx, "trend-service.fetch-prices")
	defer span.End()

	days := domain.DateRange{Start: start, End: end}.Days()
	if days < 1 {
		days = 1
	}
	span.SetAttributes(attribute.String("asset", string(asset)), attribute.Int("days", days))

	key := marketChartKey(asset, days)
	if s.redis != nil {
		cached, err := s.getMarketChartCache(ctx, key)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		metrics.RecordCacheLookup(cached != nil)
		if cached != nil {
			return cached
		}
	}

	points, err := s.prices.FetchMarketChart(ctx, asset, days)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("fetch prices for %s: %v", asset, err)
			metrics.RecordFetchError("coingecko")
		}
		return []domain.PricePoint{}
	}

	if s.redis != nil {
		if err := s.setMarketChartCache(ctx, key, points); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	return points
}

// DailySeries fetches both sources concurrently and reduces each to one
// point per day with the configured policy.
func (s *TrendService) DailySeries(ctx context.Context, asset domain.Asset, start, end time.Time) (sentiment, prices domain.DailySeries) {
	ctx, span := s.tracer.Start(ctx, "trend-service.daily-series")
	defer span.End()

	var records []domain.SentimentRecord
	var points []domain.PricePoint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records = s.FetchSentiment(gctx, asset, start, end)
		return nil
	})
	g.Go(func() error {
		points = s.FetchPrices(gctx, asset, start, end)
		return nil
	})
	_ = g.Wait()

	return aggregate.DailySentiment(records, s.policy), aggregate.DailyPrices(points, s.policy)
}

func marketChartKey(asset domain.Asset, days int) string {
	return fmt.Sprintf("market_chart:%s:%d", asset, days)
}

func (s *TrendService) setMarketChartCache(ctx context.Context, key string, points []domain.PricePoint) error {
	data, err := json.Marshal(points)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, marketChartCacheTTL).Err()
}

func (s *TrendService) getMarketChartCache(ctx context.Context, key string) ([]domain.PricePoint, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	points := []domain.PricePoint{}
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	return points, nil
}
