package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListTrends godoc
// @Summary      List stored sentiment rows
// @Description  Returns scored posts newest first, optionally filtered by asset id
// @Tags         trends
// @Produce      json
// @Param        crypto  query  string  false  "Asset id (e.g. bitcoin) or Unknown"
// @Success      200  {array}   domain.SentimentRecord
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /trends [get]
func (h *Handler) ListTrends(c *gin.Context) {
	if h.trends == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trend store unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-trends")
	defer span.End()

	crypto := strings.TrimSpace(c.Query("crypto"))
	span.SetAttributes(attribute.String("crypto", crypto))

	rows, err := h.trends.ListTrends(ctx, crypto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
