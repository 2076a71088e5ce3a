package aggregate

import (
	"reflect"
	"testing"
	"time"

	"trendboard/internal/domain"
)

func rec(t *testing.T, created string, v float64) domain.SentimentRecord {
	t.Helper()
	ts, err := domain.ParseTimestamp(created)
	if err != nil {
		t.Fatalf("parse %q: %v", created, err)
	}
	return domain.SentimentRecord{Created: ts, SentimentCompound: v}
}

func TestDailySentimentExample(t *testing.T) {
	in := []domain.SentimentRecord{
		rec(t, "2024-01-01T01:00", 0.2),
		rec(t, "2024-01-01T23:00", 0.5),
		rec(t, "2024-01-02T05:00", -0.1),
	}
	got := DailySentiment(in, LastByOrder)
	want := domain.DailySeries{
		{Day: "2024-01-01", Value: 0.5},
		{Day: "2024-01-02", Value: -0.1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDailySentimentEmpty(t *testing.T) {
	got := DailySentiment(nil, LastByOrder)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil series, got %#v", got)
	}
}

func TestDailySentimentOneEntryPerDayAscending(t *testing.T) {
	in := []domain.SentimentRecord{
		rec(t, "2024-03-05 10:00:00", 0.1),
		rec(t, "2024-03-01 09:00:00", 0.2),
		rec(t, "2024-03-03 08:00:00", 0.3),
		rec(t, "2024-03-01 22:00:00", 0.4),
		rec(t, "2024-03-05 01:00:00", 0.5),
	}
	got := DailySentiment(in, LastByOrder)
	days := got.Days()
	want := []string{"2024-03-01", "2024-03-03", "2024-03-05"}
	if !reflect.DeepEqual(days, want) {
		t.Fatalf("expected days %v, got %v", want, days)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Day >= got[i].Day {
			t.Fatalf("days not strictly increasing: %v", days)
		}
	}
}

func TestDailySentimentKeepsLastInOrderRegardlessOfTime(t *testing.T) {
	a := rec(t, "2024-01-01T20:00:00Z", 0.9)
	b := rec(t, "2024-01-01T02:00:00Z", -0.3)

	got := DailySentiment([]domain.SentimentRecord{a, b}, LastByOrder)
	if len(got) != 1 || got[0].Value != -0.3 {
		t.Fatalf("expected B (-0.3) to win, got %+v", got)
	}
}

func TestDailySentimentLastByTimestamp(t *testing.T) {
	a := rec(t, "2024-01-01T20:00:00Z", 0.9)
	b := rec(t, "2024-01-01T02:00:00Z", -0.3)
	c := rec(t, "2024-01-01T20:00:00Z", 0.7)

	got := DailySentiment([]domain.SentimentRecord{a, b}, LastByTimestamp)
	if len(got) != 1 || got[0].Value != 0.9 {
		t.Fatalf("expected latest timestamp (0.9) to win, got %+v", got)
	}

	got = DailySentiment([]domain.SentimentRecord{a, b, c}, LastByTimestamp)
	if got[0].Value != 0.7 {
		t.Fatalf("expected later record to win a timestamp tie, got %+v", got)
	}
}

func TestDailySentimentUsesUTCDay(t *testing.T) {
	// 23:30 at -05:00 is the next UTC day.
	in := []domain.SentimentRecord{rec(t, "2024-02-10T23:30:00-05:00", 0.4)}
	got := DailySentiment(in, LastByOrder)
	if got[0].Day != "2024-02-11" {
		t.Fatalf("expected UTC day 2024-02-11, got %s", got[0].Day)
	}
}

func TestDailyPrices(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.PricePoint{
		{Timestamp: base.Add(26 * time.Hour).UnixMilli(), Price: 105},
		{Timestamp: base.Add(time.Hour).UnixMilli(), Price: 100},
		{Timestamp: base.Add(23 * time.Hour).UnixMilli(), Price: 101},
		{Timestamp: base.Add(30 * time.Hour).UnixMilli(), Price: 103},
	}

	got := DailyPrices(points, LastByOrder)
	want := domain.DailySeries{
		{Day: "2025-01-01", Value: 101},
		{Day: "2025-01-02", Value: 103},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if got := DailyPrices(nil, LastByTimestamp); len(got) != 0 {
		t.Fatalf("expected empty series, got %+v", got)
	}
}

func TestDailyPricesLastByTimestamp(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.PricePoint{
		{Timestamp: base.Add(20 * time.Hour).UnixMilli(), Price: 110},
		{Timestamp: base.Add(2 * time.Hour).UnixMilli(), Price: 90},
	}
	got := DailyPrices(points, LastByTimestamp)
	if got[0].Value != 110 {
		t.Fatalf("expected 110, got %+v", got)
	}
}

func TestDailyPricesDayBoundaryMillis(t *testing.T) {
	midnight := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	points := []domain.PricePoint{
		{Timestamp: midnight - 1, Price: 1},
		{Timestamp: midnight, Price: 2},
	}
	got := DailyPrices(points, LastByOrder)
	want := domain.DailySeries{
		{Day: domain.DayOfMillis(midnight - 1), Value: 1},
		{Day: "2025-03-02", Value: 2},
	}
	if !reflect.DeepEqual(got, want) || want[0].Day != "2025-03-01" {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]Policy{
		"":          LastByOrder,
		"order":     LastByOrder,
		"Timestamp": LastByTimestamp,
	}
	for in, want := range tests {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %v, got %v (err %v)", in, want, got, err)
		}
	}
	if _, err := ParsePolicy("average"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
