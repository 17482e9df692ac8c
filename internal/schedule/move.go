package schedule

import (
	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
)

// MoveCase applies a drag operation: the case is reassigned to the target
// room and its start time recomputed from the vertical pixel offset within
// the room column. All other fields are untouched.
func MoveCase(c model.Case, targetRoom string, offsetPx float64, g grid.Config) model.Case {
	moved := c
	moved.Room = targetRoom
	moved.StartTime = g.OffsetToTime(g.PixelsToMinutes(offsetPx))
	return moved
}
