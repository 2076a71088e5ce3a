package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"trendboard/internal/dashboard"
	"trendboard/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type assetInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CoinGeckoID string `json:"coingecko_id"`
}

// DashboardResponse is the merged chart plus the daily series behind it.
type DashboardResponse struct {
	Asset     domain.Asset       `json:"asset"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Policy    string             `json:"policy"`
	Sentiment domain.DailySeries `json:"sentiment"`
	Prices    domain.DailySeries `json:"prices"`
	Chart     dashboard.Chart    `json:"chart"`
}

// ListAssets godoc
// @Summary      List selectable assets
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/assets [get]
func (h *Handler) ListAssets(c *gin.Context) {
	assets := make([]assetInfo, 0, len(domain.SupportedAssets))
	for _, a := range domain.SupportedAssets {
		assets = append(assets, assetInfo{ID: string(a), Name: a.Name(), CoinGeckoID: domain.CoinGeckoID[a]})
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// Dashboard godoc
// @Summary      Daily sentiment and price series for an asset
// @Description  Fetches sentiment rows and market chart prices, keeps one observation per UTC day and aligns both on a shared label axis
// @Tags         dashboard
// @Produce      json
// @Param        crypto  query  string  false  "Asset id"  default(bitcoin)
// @Param        start   query  string  false  "Range start (YYYY-MM-DD or RFC3339), default now minus the configured range"
// @Param        end     query  string  false  "Range end (YYYY-MM-DD includes the whole day), default now"
// @Success      200  {object}  DashboardResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.dashboard")
	defer span.End()

	asset, err := domain.ParseAsset(c.DefaultQuery("crypto", string(domain.Bitcoin)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            err.Error(),
			"supported_assets": domain.AssetIDs(),
		})
		return
	}

	rng, err := h.parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("asset", string(asset)),
		attribute.String("start", rng.Start.Format(time.RFC3339)),
		attribute.String("end", rng.End.Format(time.RFC3339)),
	)

	sentiment, prices := h.series.DailySeries(ctx, asset, rng.Start, rng.End)
	c.JSON(http.StatusOK, DashboardResponse{
		Asset:     asset,
		Start:     rng.Start.UTC().Format(time.RFC3339),
		End:       rng.End.UTC().Format(time.RFC3339),
		Policy:    h.policy,
		Sentiment: sentiment,
		Prices:    prices,
		Chart:     dashboard.Merge(sentiment, prices),
	})
}

func (h *Handler) parseRange(startRaw, endRaw string) (domain.DateRange, error) {
	rng := domain.DefaultRange(h.now().UTC(), h.defaultRangeDays)

	if s := strings.TrimSpace(startRaw); s != "" {
		t, err := domain.ParseTimestamp(s)
		if err != nil {
			return rng, errors.New("invalid start: " + s)
		}
		rng.Start = t
	}
	if s := strings.TrimSpace(endRaw); s != "" {
		t, err := domain.ParseTimestamp(s)
		if err != nil {
			return rng, errors.New("invalid end: " + s)
		}
		if _, err := time.ParseInLocation(domain.DayLayout, s, time.UTC); err == nil {
			t = t.Add(24*time.Hour - time.Second)
		}
		rng.End = t
	}
	if rng.Start.After(rng.End) {
		return rng, errors.New("start must not be after end")
	}
	return rng, nil
}
