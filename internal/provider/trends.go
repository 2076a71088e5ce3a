package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendboard/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTrendsBaseURL = "http://127.0.0.1:5000"

// TrendsProvider reads scored posts from a trends API (GET /trends?crypto=).
type TrendsProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewTrendsProvider(tracer trace.Tracer, baseURL string) *TrendsProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultTrendsBaseURL
	}
	return &TrendsProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// FetchTrends returns every stored record for asset, in the order the API sent them.
func (p *TrendsProvider) FetchTrends(ctx context.Context, asset domain.Asset) ([]domain.SentimentRecord, error) {
	ctx, span := p.tracer.Start(ctx, "trends.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("asset", string(asset)))

	u := fmt.Sprintf("%s/trends?crypto=%s", p.baseURL, url.QueryEscape(string(asset)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trends API error %d: %s", resp.StatusCode, string(body))
	}

	var records []domain.SentimentRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode trends response: %w", err)
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
