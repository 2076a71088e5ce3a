package mcpserver

import (
	"context"
	"fmt"
	"slices"
	"time"

	"trendboard/internal/domain"
	"trendboard/pkg/tracing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxTrendDays = 90

type SeriesProvider interface {
	DailySeries(ctx context.Context, asset domain.Asset, start, end time.Time) (sentiment, prices domain.DailySeries)
}

type AssetInfo struct {
	ID   string `json:"id" jsonschema:"asset identifier accepted by daily_trend"`
	Name string `json:"name" jsonschema:"display name"`
}

type ListAssetsInput struct{}

type ListAssetsOutput struct {
	Assets []AssetInfo `json:"assets" jsonschema:"supported assets"`
}

type DailyTrendInput struct {
	Asset string `json:"asset" jsonschema:"asset id such as bitcoin or ethereum"`
	Days  int    `json:"days,omitempty" jsonschema:"number of trailing days, default 7, max 90"`
}

type TrendPoint struct {
	Day       string   `json:"day"`
	Sentiment *float64 `json:"sentiment,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}

type DailyTrendOutput struct {
	Asset  string       `json:"asset"`
	Start  string       `json:"start"`
	End    string       `json:"end"`
	Points []TrendPoint `json:"points"`
}

// Tools holds the tool handlers so they can be called without a transport.
type Tools struct {
	series      SeriesProvider
	timeout     time.Duration
	defaultDays int
	now         func() time.Time
}

func NewTools(series SeriesProvider, timeout time.Duration, defaultDays int) *Tools {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if defaultDays <= 0 {
		defaultDays = 7
	}
	return &Tools{series: series, timeout: timeout, defaultDays: defaultDays, now: time.Now}
}

// NewServer registers list_assets and daily_trend on a fresh MCP server.
func NewServer(tools *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    tracing.ServiceName,
		Version: tracing.ServiceVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_assets",
		Description: "List the crypto assets tracked by the dashboard.",
	}, tools.ListAssets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "daily_trend",
		Description: "Daily aggregated sentiment and closing price for an asset over the trailing N days.",
	}, tools.DailyTrend)

	return server
}

func (t *Tools) ListAssets(ctx context.Context, _ *mcp.CallToolRequest, _ ListAssetsInput) (*mcp.CallToolResult, ListAssetsOutput, error) {
	out := ListAssetsOutput{Assets: make([]AssetInfo, 0, len(domain.SupportedAssets))}
	for _, a := range domain.SupportedAssets {
		out.Assets = append(out.Assets, AssetInfo{ID: string(a), Name: a.Name()})
	}
	return nil, out, nil
}

func (t *Tools) DailyTrend(ctx context.Context, _ *mcp.CallToolRequest, in DailyTrendInput) (*mcp.CallToolResult, DailyTrendOutput, error) {
	asset, err := domain.ParseAsset(in.Asset)
	if err != nil {
		return nil, DailyTrendOutput{}, err
	}
	days := in.Days
	if days == 0 {
		days = t.defaultDays
	}
	if days < 0 || days > maxTrendDays {
		return nil, DailyTrendOutput{}, fmt.Errorf("days must be between 1 and %d", maxTrendDays)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rng := domain.DefaultRange(t.now().UTC(), days)
	sentiment, prices := t.series.DailySeries(ctx, asset, rng.Start, rng.End)
	if err := ctx.Err(); err != nil {
		return nil, DailyTrendOutput{}, fmt.Errorf("daily trend for %s: %w", asset, err)
	}

	return nil, DailyTrendOutput{
		Asset:  string(asset),
		Start:  domain.FormatDay(rng.Start),
		End:    domain.FormatDay(rng.End),
		Points: mergePoints(sentiment, prices),
	}, nil
}

func mergePoints(sentiment, prices domain.DailySeries) []TrendPoint {
	byDay := make(map[string]*TrendPoint)
	order := make([]string, 0, len(sentiment)+len(prices))
	get := func(day string) *TrendPoint {
		if p, ok := byDay[day]; ok {
			return p
		}
		p := &TrendPoint{Day: day}
		byDay[day] = p
		order = append(order, day)
		return p
	}
	for _, s := range sentiment {
		v := s.Value
		get(s.Day).Sentiment = &v
	}
	for _, s := range prices {
		v := s.Value
		get(s.Day).Price = &v
	}

	slices.Sort(order)
	out := make([]TrendPoint, 0, len(order))
	for _, day := range order {
		out = append(out, *byDay[day])
	}
	return out
}
