// Package analytics derives read-side statistics from the current case set.
// Everything here is a pure computation; nothing is persisted.
package analytics

import (
	"math"
	"strings"

	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
)

// SurgeonStat summarizes one surgeon's caseload.
type SurgeonStat struct {
	Surgeon       string  `json:"surgeon"`
	CaseCount     int     `json:"caseCount"`
	AvgP50Minutes float64 `json:"avgP50Minutes"`
}

// RoomTotal is the total scheduled minutes for one room, keyed by the room
// name with any parenthetical suffix stripped.
type RoomTotal struct {
	Room         string `json:"room"`
	TotalMinutes int    `json:"totalMinutes"`
}

// CategoryCount is a count for one priority or risk category.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SurgeonStats returns per-surgeon case counts and mean P50 durations, in
// order of first appearance. Surgeons without cases are absent.
func SurgeonStats(cases []model.Case) []SurgeonStat {
	type acc struct {
		total int
		count int
	}
	totals := make(map[string]*acc)
	var order []string
	for _, c := range cases {
		a, ok := totals[c.Surgeon]
		if !ok {
			a = &acc{}
			totals[c.Surgeon] = a
			order = append(order, c.Surgeon)
		}
		a.total += c.AIP50Minutes
		a.count++
	}

	stats := make([]SurgeonStat, 0, len(order))
	for _, name := range order {
		a := totals[name]
		stats = append(stats, SurgeonStat{
			Surgeon:       name,
			CaseCount:     a.count,
			AvgP50Minutes: float64(a.total) / float64(a.count),
		})
	}
	return stats
}

// baseRoomName strips a parenthetical suffix from a room label, so
// "OR 1 (Gen)" aggregates under "OR 1".
func baseRoomName(name string) string {
	return strings.TrimSpace(strings.SplitN(name, "(", 2)[0])
}

// RoomTotals sums scheduled minutes (P50 plus turnover) per room, in order of
// first appearance.
func RoomTotals(cases []model.Case) []RoomTotal {
	totals := make(map[string]int)
	var order []string
	for _, c := range cases {
		name := baseRoomName(c.Room)
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] += c.AIP50Minutes + c.TurnoverMinutes
	}

	out := make([]RoomTotal, 0, len(order))
	for _, name := range order {
		out = append(out, RoomTotal{Room: name, TotalMinutes: totals[name]})
	}
	return out
}

// PriorityCounts counts cases per priority. Categories with zero cases are
// omitted; the rest appear in Elective, Urgent, Emergent order.
func PriorityCounts(cases []model.Case) []CategoryCount {
	counts := make(map[model.Priority]int)
	for _, c := range cases {
		counts[c.Priority]++
	}
	var out []CategoryCount
	for _, p := range []model.Priority{model.PriorityElective, model.PriorityUrgent, model.PriorityEmergent} {
		if counts[p] > 0 {
			out = append(out, CategoryCount{Name: string(p), Count: counts[p]})
		}
	}
	return out
}

// RiskCounts counts cases per risk level. Categories with zero cases are
// omitted; the rest appear in Low, Medium, High order.
func RiskCounts(cases []model.Case) []CategoryCount {
	counts := make(map[model.Risk]int)
	for _, c := range cases {
		counts[c.Risk]++
	}
	var out []CategoryCount
	for _, r := range []model.Risk{model.RiskLow, model.RiskMedium, model.RiskHigh} {
		if counts[r] > 0 {
			out = append(out, CategoryCount{Name: string(r), Count: counts[r]})
		}
	}
	return out
}

// Utilization returns scheduled minutes as a rounded percentage of the total
// room capacity within the grid's day window, or 0 when there are no rooms.
func Utilization(cases []model.Case, roomCount int, g grid.Config) int {
	if roomCount == 0 {
		return 0
	}
	total := 0
	for _, c := range cases {
		total += c.AIP50Minutes + c.TurnoverMinutes
	}
	available := roomCount * g.WindowMinutes()
	return int(math.Round(100 * float64(total) / float64(available)))
}
