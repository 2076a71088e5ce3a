package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"trendboard/internal/aggregate"
	"trendboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func day(d, h int) time.Time {
	return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
}

func TestTrendService_FetchSentimentFiltersInclusiveRange(t *testing.T) {
	t.Parallel()

	trends := &mockTrends{records: []domain.SentimentRecord{
		{ID: 1, Created: day(1, 0)},
		{ID: 2, Created: day(2, 12)},
		{ID: 3, Created: day(3, 0)},
		{ID: 4, Created: day(3, 1)},
	}}
	svc := NewTrendService(testTracer, trends, &mockChart{}, nil, aggregate.LastByOrder)

	got := svc.FetchSentiment(context.Background(), domain.Bitcoin, day(1, 0), day(3, 0))
	if len(got) != 3 || got[0].ID != 1 || got[2].ID != 3 {
		t.Fatalf("expected inclusive bounds to keep ids 1..3, got %+v", got)
	}
	if trends.asset != domain.Bitcoin {
		t.Fatalf("expected asset to be forwarded, got %s", trends.asset)
	}
}

func TestTrendService_FetchSentimentErrorYieldsEmpty(t *testing.T) {
	t.Parallel()

	svc := NewTrendService(testTracer, &mockTrends{err: errors.New("connection refused")}, &mockChart{}, nil, aggregate.LastByOrder)
	got := svc.FetchSentiment(context.Background(), domain.Bitcoin, day(1, 0), day(2, 0))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestTrendService_FetchPricesDaysFromRange(t *testing.T) {
	t.Parallel()

	chart := &mockChart{points: []domain.PricePoint{{Timestamp: 1, Price: 2}}}
	svc := NewTrendService(testTracer, &mockTrends{}, chart, nil, aggregate.LastByOrder)

	svc.FetchPrices(context.Background(), domain.Ethereum, day(1, 0), day(8, 1))
	if chart.lastDays != 8 {
		t.Fatalf("expected ceil of 7d1h = 8 days, got %d", chart.lastDays)
	}
	svc.FetchPrices(context.Background(), domain.Ethereum, day(1, 0), day(1, 0))
	if chart.lastDays != 1 {
		t.Fatalf("expected minimum of 1 day, got %d", chart.lastDays)
	}
	svc.FetchPrices(context.Background(), domain.Ethereum, day(5, 0), day(1, 0))
	if chart.lastDays != 4 {
		t.Fatalf("expected inverted range to use absolute span, got %d", chart.lastDays)
	}
}

func TestTrendService_FetchPricesCaches(t *testing.T) {
	t.Parallel()

	chart := &mockChart{points: []domain.PricePoint{{Timestamp: 1704067200000, Price: 42000}}}
	rdb := newFakeRedis()
	svc := NewTrendService(testTracer, &mockTrends{}, chart, rdb, aggregate.LastByOrder)

	first := svc.FetchPrices(context.Background(), domain.Bitcoin, day(1, 0), day(3, 0))
	second := svc.FetchPrices(context.Background(), domain.Bitcoin, day(1, 0), day(3, 0))
	if chart.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", chart.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Price != 42000 {
		t.Fatalf("unexpected points: %+v %+v", first, second)
	}
	if _, ok := rdb.data["market_chart:bitcoin:2"]; !ok {
		t.Fatalf("expected cache key, got %v", rdb.data)
	}
}

func TestTrendService_FetchPricesCacheReadErrorFallsThrough(t *testing.T) {
	t.Parallel()

	chart := &mockChart{points: []domain.PricePoint{{Timestamp: 1, Price: 1}}}
	rdb := newFakeRedis()
	rdb.getErr = errors.New("redis down")
	rdb.setErr = errors.New("redis down")
	svc := NewTrendService(testTracer, &mockTrends{}, chart, rdb, aggregate.LastByOrder)

	got := svc.FetchPrices(context.Background(), domain.Bitcoin, day(1, 0), day(2, 0))
	if len(got) != 1 || chart.calls != 1 {
		t.Fatalf("expected upstream fetch despite cache errors, got %+v calls=%d", got, chart.calls)
	}
}

func TestTrendService_FetchPricesErrorYieldsEmpty(t *testing.T) {
	t.Parallel()

	svc := NewTrendService(testTracer, &mockTrends{}, &mockChart{err: errors.New("429")}, newFakeRedis(), aggregate.LastByOrder)
	got := svc.FetchPrices(context.Background(), domain.Bitcoin, day(1, 0), day(2, 0))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestTrendService_DailySeries(t *testing.T) {
	t.Parallel()

	trends := &mockTrends{records: []domain.SentimentRecord{
		{Created: day(1, 1), SentimentCompound: 0.2},
		{Created: day(1, 23), SentimentCompound: 0.5},
		{Created: day(2, 5), SentimentCompound: -0.1},
	}}
	chart := &mockChart{points: []domain.PricePoint{
		{Timestamp: day(1, 0).UnixMilli(), Price: 100},
		{Timestamp: day(1, 12).UnixMilli(), Price: 110},
		{Timestamp: day(2, 0).UnixMilli(), Price: 120},
	}}
	svc := NewTrendService(testTracer, trends, chart, nil, aggregate.LastByOrder)

	sent, prices := svc.DailySeries(context.Background(), domain.Bitcoin, day(1, 0), day(3, 0))
	if len(sent) != 2 || sent[0] != (domain.DailyPoint{Day: "2024-01-01", Value: 0.5}) || sent[1] != (domain.DailyPoint{Day: "2024-01-02", Value: -0.1}) {
		t.Fatalf("unexpected sentiment series: %+v", sent)
	}
	if len(prices) != 2 || prices[0].Value != 110 || prices[1].Value != 120 {
		t.Fatalf("unexpected price series: %+v", prices)
	}
}

type mockTrends struct {
	mu      sync.Mutex
	records []domain.SentimentRecord
	err     error
	asset   domain.Asset
}

func (m *mockTrends) FetchTrends(ctx context.Context, asset domain.Asset) ([]domain.SentimentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asset = asset
	return m.records, m.err
}

type mockChart struct {
	mu       sync.Mutex
	points   []domain.PricePoint
	err      error
	calls    int
	lastDays int
}

func (m *mockChart) FetchMarketChart(ctx context.Context, asset domain.Asset, days int) ([]domain.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastDays = days
	return m.points, m.err
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type listerFunc func(ctx context.Context, crypto string) ([]domain.SentimentRecord, error)

func (f listerFunc) ListTrends(ctx context.Context, crypto string) ([]domain.SentimentRecord, error) {
	return f(ctx, crypto)
}

func TestStoreTrendsSourceQueriesByAssetID(t *testing.T) {
	t.Parallel()

	var got string
	src := StoreTrendsSource(listerFunc(func(_ context.Context, crypto string) ([]domain.SentimentRecord, error) {
		got = crypto
		return []domain.SentimentRecord{{Title: "eth up"}}, nil
	}))

	records, err := src.FetchTrends(context.Background(), domain.Ethereum)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ethereum" {
		t.Fatalf("expected crypto=ethereum, got %q", got)
	}
	if len(records) != 1 || records[0].Title != "eth up" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
