package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/notify"
	"or-schedule-backend/internal/oracle"
	"or-schedule-backend/internal/schedule"
)

// GetCases handles GET /api/cases.
func (h *Handler) GetCases(c *gin.Context) {
	cases, err := h.store.ListCases(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cases"})
		return
	}
	c.JSON(http.StatusOK, cases)
}

// GetRooms handles GET /api/rooms.
func (h *Handler) GetRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetSurgeons handles GET /api/surgeons.
func (h *Handler) GetSurgeons(c *gin.Context) {
	surgeons, err := h.store.ListSurgeons(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve surgeons"})
		return
	}
	c.JSON(http.StatusOK, surgeons)
}

// PostCase handles POST /api/cases: the draft is enriched by the oracle and
// the completed case inserted. A failed enrichment writes nothing.
func (h *Handler) PostCase(c *gin.Context) {
	var draft oracle.CaseDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := grid.TimeToMinutes(draft.StartTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enriched, err := h.provider.Enrich(c.Request.Context(), draft)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.InsertCase(c.Request.Context(), enriched); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate()
	h.dispatch(notify.CaseAdded(enriched))
	c.JSON(http.StatusCreated, enriched)
}

type moveCaseRequest struct {
	CaseID   string   `json:"caseId" binding:"required"`
	Room     string   `json:"room" binding:"required"`
	OffsetPx *float64 `json:"offsetPx" binding:"required"`
}

// MoveCase handles POST /api/cases/move, the drag wire contract: the pixel
// offset within the target room column becomes the new start time.
func (h *Handler) MoveCase(c *gin.Context) {
	var req moveCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cases, err := h.store.ListCases(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, existing := range cases {
		if existing.ID != req.CaseID {
			continue
		}
		result := schedule.MoveCase(existing, req.Room, *req.OffsetPx, h.grid)
		if err := h.store.UpdateCase(c.Request.Context(), result); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		h.invalidate()
		h.dispatch(notify.CaseMoved(result))
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
}
