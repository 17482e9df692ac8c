// Package grid maps wall-clock times onto the schedule display grid. All
// functions are pure; nothing here clamps to the day window, so cases that
// start before StartHour or run past EndHour simply produce out-of-range
// coordinates.
package grid

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"or-schedule-backend/internal/model"
)

// ErrInvalidTimeFormat is returned when a time string is not a valid
// 24-hour "HH:mm" value.
var ErrInvalidTimeFormat = errors.New("invalid time format")

var timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Config describes the display window and density of the schedule grid.
type Config struct {
	StartHour       int     `yaml:"start_hour"`
	EndHour         int     `yaml:"end_hour"`
	PixelsPerMinute float64 `yaml:"pixels_per_minute"`
}

// Geometry is the pixel placement of a single case card within a room column.
type Geometry struct {
	Top             float64 `json:"top"`
	ProcedureHeight float64 `json:"procedureHeight"`
	TurnoverHeight  float64 `json:"turnoverHeight"`
}

// TimeToMinutes parses a "HH:mm" string into minutes since midnight.
func TimeToMinutes(t string) (int, error) {
	m := timeRe.FindStringSubmatch(t)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil || mins > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	return hours*60 + mins, nil
}

// MinutesToTime formats minutes since midnight as "HH:mm".
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WindowMinutes returns the length of the display window in minutes.
func (c Config) WindowMinutes() int {
	return (c.EndHour - c.StartHour) * 60
}

// TimeToOffset converts a clock time into minutes past the top of the grid.
// The result may be negative or exceed the window.
func (c Config) TimeToOffset(t string) (int, error) {
	minutes, err := TimeToMinutes(t)
	if err != nil {
		return 0, err
	}
	return minutes - c.StartHour*60, nil
}

// OffsetToTime is the inverse of TimeToOffset.
func (c Config) OffsetToTime(offsetMinutes int) string {
	return MinutesToTime(c.StartHour*60 + offsetMinutes)
}

// PixelsToMinutes converts a vertical pixel offset within a room column into
// whole minutes past the top of the grid, rounding to the nearest minute.
func (c Config) PixelsToMinutes(px float64) int {
	return int(math.Round(px / c.PixelsPerMinute))
}

// CaseGeometry computes the pixel placement of a case from its start time,
// predicted duration, and turnover.
func (c Config) CaseGeometry(cs model.Case) (Geometry, error) {
	offset, err := c.TimeToOffset(cs.StartTime)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		Top:             float64(offset) * c.PixelsPerMinute,
		ProcedureHeight: float64(cs.AIP50Minutes) * c.PixelsPerMinute,
		TurnoverHeight:  float64(cs.TurnoverMinutes) * c.PixelsPerMinute,
	}, nil
}
