package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"or-schedule-backend/internal/analytics"
)

type analyticsResponse struct {
	Surgeons    []analytics.SurgeonStat   `json:"surgeons"`
	Rooms       []analytics.RoomTotal     `json:"rooms"`
	Priorities  []analytics.CategoryCount `json:"priorities"`
	Risks       []analytics.CategoryCount `json:"risks"`
	Utilization int                       `json:"utilization"`
}

// GetAnalytics handles GET /api/analytics: the aggregator's read-side view
// over the current case set.
func (h *Handler) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	cases, err := h.store.ListCases(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cases"})
		return
	}
	rooms, err := h.store.ListRooms(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
		return
	}

	c.JSON(http.StatusOK, analyticsResponse{
		Surgeons:    analytics.SurgeonStats(cases),
		Rooms:       analytics.RoomTotals(cases),
		Priorities:  analytics.PriorityCounts(cases),
		Risks:       analytics.RiskCounts(cases),
		Utilization: analytics.Utilization(cases, len(rooms), h.grid),
	})
}

// GetSummary handles GET /api/summary with the oracle's daily analysis.
func (h *Handler) GetSummary(c *gin.Context) {
	cases, err := h.store.ListCases(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cases"})
		return
	}

	summary, err := h.provider.Summarize(c.Request.Context(), cases)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
