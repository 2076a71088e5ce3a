package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendboard/internal/domain"
)

type stubSeries struct {
	sentiment domain.DailySeries
	prices    domain.DailySeries
	gotAsset  domain.Asset
	gotStart  time.Time
	gotEnd    time.Time
}

func (s *stubSeries) DailySeries(_ context.Context, asset domain.Asset, start, end time.Time) (domain.DailySeries, domain.DailySeries) {
	s.gotAsset = asset
	s.gotStart = start
	s.gotEnd = end
	return s.sentiment, s.prices
}

func TestListAssets(t *testing.T) {
	tools := NewTools(&stubSeries{}, time.Second, 7)
	_, out, err := tools.ListAssets(context.Background(), nil, ListAssetsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Assets) != len(domain.SupportedAssets) {
		t.Fatalf("expected %d assets, got %d", len(domain.SupportedAssets), len(out.Assets))
	}
	if out.Assets[0].ID != "bitcoin" || out.Assets[0].Name != "Bitcoin" {
		t.Fatalf("unexpected first asset: %+v", out.Assets[0])
	}
}

func TestDailyTrendMergesSeries(t *testing.T) {
	series := &stubSeries{
		sentiment: domain.DailySeries{{Day: "2024-01-02", Value: 0.5}, {Day: "2024-01-01", Value: -0.2}},
		prices:    domain.DailySeries{{Day: "2024-01-01", Value: 100}, {Day: "2024-01-03", Value: 110}},
	}
	tools := NewTools(series, time.Second, 7)
	tools.now = func() time.Time { return time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC) }

	_, out, err := tools.DailyTrend(context.Background(), nil, DailyTrendInput{Asset: "Bitcoin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.gotAsset != domain.Bitcoin {
		t.Fatalf("expected bitcoin, got %s", series.gotAsset)
	}
	if out.Start != "2024-01-01" || out.End != "2024-01-08" {
		t.Fatalf("unexpected range %s..%s", out.Start, out.End)
	}
	if len(out.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out.Points))
	}
	first := out.Points[0]
	if first.Day != "2024-01-01" || first.Sentiment == nil || *first.Sentiment != -0.2 || first.Price == nil || *first.Price != 100 {
		t.Fatalf("unexpected first point: %+v", first)
	}
	if out.Points[1].Price != nil {
		t.Fatalf("expected no price on 2024-01-02")
	}
	if out.Points[2].Sentiment != nil {
		t.Fatalf("expected no sentiment on 2024-01-03")
	}
}

func TestDailyTrendValidation(t *testing.T) {
	tools := NewTools(&stubSeries{}, time.Second, 7)

	_, _, err := tools.DailyTrend(context.Background(), nil, DailyTrendInput{Asset: "litecoin"})
	if !errors.Is(err, domain.ErrUnsupportedAsset) {
		t.Fatalf("expected ErrUnsupportedAsset, got %v", err)
	}

	_, _, err = tools.DailyTrend(context.Background(), nil, DailyTrendInput{Asset: "bitcoin", Days: 91})
	if err == nil {
		t.Fatal("expected days validation error")
	}
}

func TestDailyTrendCancelledContext(t *testing.T) {
	tools := NewTools(&stubSeries{}, time.Second, 7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := tools.DailyTrend(ctx, nil, DailyTrendInput{Asset: "ethereum", Days: 3})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewServerBuilds(t *testing.T) {
	if NewServer(NewTools(&stubSeries{}, 0, 0)) == nil {
		t.Fatal("expected server")
	}
}
