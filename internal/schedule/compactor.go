// Package schedule recomputes case start times. The compactor packs each
// room's cases back-to-back so the only time between consecutive cases is
// the mandated turnover; the move helper converts a drag operation's pixel
// offset into an updated case.
package schedule

import (
	"fmt"
	"sort"

	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
	"or-schedule-backend/internal/room"
)

// DefaultDayFloor is the earliest start time compaction will assign to the
// first case of a room.
const DefaultDayFloor = "07:30"

// Compactor packs a day's cases within their canonical rooms.
type Compactor struct {
	Rooms    []model.Room
	DayFloor string
}

// NewCompactor builds a compactor over the given canonical rooms with the
// default day floor.
func NewCompactor(rooms []model.Room) Compactor {
	return Compactor{Rooms: rooms, DayFloor: DefaultDayFloor}
}

type timedCase struct {
	c     model.Case
	start int // minutes since midnight
	seq   int // original position, tie-break
}

// Compact returns a new case set identical to the input except for start
// times: within each room, cases are ordered by their current start time and
// packed back-to-back, the first case floored at DayFloor. Cases whose room
// label resolves to no canonical room keep their start time unchanged. The
// result is sorted by new start time, ties keeping input order. Compact is
// idempotent and never mutates its input.
func (cp Compactor) Compact(cases []model.Case) ([]model.Case, error) {
	if len(cases) == 0 {
		return []model.Case{}, nil
	}

	floor, err := grid.TimeToMinutes(cp.DayFloor)
	if err != nil {
		return nil, fmt.Errorf("invalid day floor: %w", err)
	}

	byRoom := make(map[string][]timedCase)
	var unresolved []timedCase
	for i, c := range cases {
		start, err := grid.TimeToMinutes(c.StartTime)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.ID, err)
		}
		tc := timedCase{c: c, start: start, seq: i}
		if r, ok := room.Resolve(c.Room, cp.Rooms); ok {
			byRoom[r.Name] = append(byRoom[r.Name], tc)
		} else {
			unresolved = append(unresolved, tc)
		}
	}

	packed := make([]timedCase, 0, len(cases))
	for _, group := range byRoom {
		sort.SliceStable(group, func(i, j int) bool { return group[i].start < group[j].start })
		next := 0
		for i, tc := range group {
			if i == 0 {
				next = max(tc.start, floor)
			}
			tc.start = next
			tc.c.StartTime = grid.MinutesToTime(next)
			next += tc.c.AIP50Minutes + tc.c.TurnoverMinutes
			packed = append(packed, tc)
		}
	}
	packed = append(packed, unresolved...)

	sort.SliceStable(packed, func(i, j int) bool {
		if packed[i].start != packed[j].start {
			return packed[i].start < packed[j].start
		}
		return packed[i].seq < packed[j].seq
	})

	out := make([]model.Case, len(packed))
	for i, tc := range packed {
		out[i] = tc.c
	}
	return out, nil
}
