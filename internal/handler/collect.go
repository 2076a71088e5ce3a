package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"trendboard/internal/domain"
	"trendboard/internal/job"
	"trendboard/internal/service"

	"github.com/gin-gonic/gin"
)

// TriggerCollect godoc
// @Summary      Run one sentiment collection cycle or a historical backfill
// @Description  Without start and end, fetches the newest subreddit posts, scores and stores them.
// @Description  With both, backfills [start, end) from the post archive one UTC day at a time and returns a service.BackfillResult; a date-only end includes that day.
// @Tags         trends
// @Produce      json
// @Security     ApiKeyAuth
// @Param        start  query     string  false  "Backfill start (date, datetime or epoch)"
// @Param        end    query     string  false  "Backfill end (date, datetime or epoch)"
// @Success      200  {object}  service.CollectResult
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/collect [post]
func (h *Handler) TriggerCollect(c *gin.Context) {
	if h.collector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "collector unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-collect")
	defer span.End()

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw != "" || endRaw != "" {
		h.backfill(ctx, c, startRaw, endRaw)
		return
	}

	result, err := h.collector.RunNow(ctx)
	if errors.Is(err, job.ErrCollectInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) backfill(ctx context.Context, c *gin.Context, startRaw, endRaw string) {
	start, end, err := parseBackfillRange(startRaw, endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.collector.Backfill(ctx, start, end)
	switch {
	case errors.Is(err, job.ErrCollectInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrArchiveUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, result)
	}
}

// parseBackfillRange requires both bounds. A date-only end moves to the
// following midnight so the named day is covered.
func parseBackfillRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	startRaw, endRaw = strings.TrimSpace(startRaw), strings.TrimSpace(endRaw)
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("backfill needs both start and end")
	}
	start, err := domain.ParseTimestamp(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start: " + startRaw)
	}
	end, err := domain.ParseTimestamp(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end: " + endRaw)
	}
	if _, err := time.ParseInLocation(domain.DayLayout, endRaw, time.UTC); err == nil {
		end = end.Add(24 * time.Hour)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}
