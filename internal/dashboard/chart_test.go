package dashboard

import (
	"testing"

	"trendboard/internal/domain"
)

func TestMergePriceLabelsTakePrecedence(t *testing.T) {
	sent := domain.DailySeries{{Day: "2024-01-01", Value: 0.5}, {Day: "2024-01-03", Value: -0.2}}
	prices := domain.DailySeries{{Day: "2024-01-01", Value: 100}, {Day: "2024-01-02", Value: 101}}

	c := Merge(sent, prices)
	if c.Empty {
		t.Fatal("expected non-empty chart")
	}
	if len(c.Labels) != 2 || c.Labels[0] != "2024-01-01" || c.Labels[1] != "2024-01-02" {
		t.Fatalf("expected price labels, got %v", c.Labels)
	}
	if c.Sentiment[0] == nil || *c.Sentiment[0] != 0.5 || c.Sentiment[1] != nil {
		t.Fatalf("unexpected sentiment alignment: %v", c.Sentiment)
	}
	if *c.Price[1] != 101 {
		t.Fatalf("unexpected price alignment: %v", c.Price)
	}
}

func TestMergeFallsBackToSentimentLabels(t *testing.T) {
	sent := domain.DailySeries{{Day: "2024-01-01", Value: 0.5}, {Day: "2024-01-02", Value: 0.1}}

	c := Merge(sent, domain.DailySeries{})
	if len(c.Labels) != 2 || c.Labels[1] != "2024-01-02" {
		t.Fatalf("expected sentiment labels, got %v", c.Labels)
	}
	if c.Price[0] != nil || c.Price[1] != nil {
		t.Fatalf("expected price gaps, got %v", c.Price)
	}
}

func TestMergeEmpty(t *testing.T) {
	c := Merge(nil, domain.DailySeries{})
	if !c.Empty || c.Message != EmptyMessage {
		t.Fatalf("expected empty state, got %+v", c)
	}
	if c.Labels == nil || len(c.Labels) != 0 {
		t.Fatalf("expected empty non-nil labels, got %#v", c.Labels)
	}
}
