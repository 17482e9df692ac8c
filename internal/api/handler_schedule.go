package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"or-schedule-backend/internal/conflict"
	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
	"or-schedule-backend/internal/notify"
	"or-schedule-backend/internal/room"
	"or-schedule-backend/internal/schedule"
)

// gridCase is one case annotated with its pixel placement and conflict
// icons for the schedule grid view.
type gridCase struct {
	model.Case
	Geometry grid.Geometry   `json:"geometry"`
	Icons    []conflict.Icon `json:"icons"`
}

type gridResponse struct {
	StartHour       int                   `json:"startHour"`
	EndHour         int                   `json:"endHour"`
	PixelsPerMinute float64               `json:"pixelsPerMinute"`
	Rooms           []model.Room          `json:"rooms"`
	CasesByRoom     map[string][]gridCase `json:"casesByRoom"`
}

// GetScheduleGrid handles GET /api/schedule/grid: cases bucketed by
// canonical room with display geometry and conflict annotations. Cases whose
// room label resolves to no canonical room are omitted, matching the grid's
// drop behavior; cases with malformed start times are rejected wholesale.
func (h *Handler) GetScheduleGrid(c *gin.Context) {
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

	grouped := room.GroupByRoom(cases, rooms)
	casesByRoom := make(map[string][]gridCase, len(grouped))
	placed := 0
	for name, roomCases := range grouped {
		annotated := make([]gridCase, 0, len(roomCases))
		for _, rc := range roomCases {
			geom, err := h.grid.CaseGeometry(rc)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			annotated = append(annotated, gridCase{Case: rc, Geometry: geom, Icons: conflict.Classify(rc)})
		}
		placed += len(annotated)
		casesByRoom[name] = annotated
	}
	if dropped := len(cases) - placed; dropped > 0 {
		log.Printf("%d case(s) have a room label matching no canonical room and are hidden from the grid", dropped)
	}

	c.JSON(http.StatusOK, gridResponse{
		StartHour:       h.grid.StartHour,
		EndHour:         h.grid.EndHour,
		PixelsPerMinute: h.grid.PixelsPerMinute,
		Rooms:           rooms,
		CasesByRoom:     casesByRoom,
	})
}

// beginRewrite claims the single-flight rewrite slot, replying 409 when a
// compaction or optimization is already running.
func (h *Handler) beginRewrite(c *gin.Context) bool {
	if !h.rewriting.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "a schedule rewrite is already in progress"})
		return false
	}
	return true
}

// CompactSchedule handles POST /api/schedule/compact with the deterministic
// compactor. The rewritten case set replaces the stored one atomically; on
// any failure the stored schedule is left untouched.
func (h *Handler) CompactSchedule(c *gin.Context) {
	if !h.beginRewrite(c) {
		return
	}
	defer h.rewriting.Store(false)

	ctx := c.Request.Context()
	cases, err := h.store.ListCases(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rooms, err := h.store.ListRooms(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	compactor := schedule.Compactor{Rooms: rooms, DayFloor: h.dayFloor}
	compacted, err := compactor.Compact(cases)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.ReplaceAllCases(ctx, compacted); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate()
	h.dispatch(notify.ScheduleRewritten("schedule_compacted", len(compacted)))
	c.JSON(http.StatusOK, compacted)
}

// OptimizeSchedule handles POST /api/schedule/optimize through the external
// oracle. The oracle's reply is validated before anything is written, so a
// misbehaving oracle cannot corrupt the schedule.
func (h *Handler) OptimizeSchedule(c *gin.Context) {
	if !h.beginRewrite(c) {
		return
	}
	defer h.rewriting.Store(false)

	ctx := c.Request.Context()
	cases, err := h.store.ListCases(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	optimized, err := h.provider.Optimize(ctx, cases)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.ReplaceAllCases(ctx, optimized); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate()
	h.dispatch(notify.ScheduleRewritten("schedule_optimized", len(optimized)))
	c.JSON(http.StatusOK, optimized)
}

type importScheduleRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportSchedule handles POST /api/schedule/import: free-text schedule notes
// are parsed by the oracle and inserted as a batch.
func (h *Handler) ImportSchedule(c *gin.Context) {
	var req importScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, err := h.provider.ParseSchedule(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.InsertCases(c.Request.Context(), parsed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate()
	h.dispatch(notify.ScheduleRewritten("schedule_imported", len(parsed)))
	c.JSON(http.StatusCreated, parsed)
}
