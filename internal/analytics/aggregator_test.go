package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
)

var testGrid = grid.Config{StartHour: 7, EndHour: 18, PixelsPerMinute: 1.5}

func TestSurgeonStats(t *testing.T) {
	cases := []model.Case{
		{Surgeon: "Dr. Chen", AIP50Minutes: 60},
		{Surgeon: "Dr. Okafor", AIP50Minutes: 120},
		{Surgeon: "Dr. Chen", AIP50Minutes: 45},
	}

	stats := SurgeonStats(cases)
	require.Len(t, stats, 2)

	// First-appearance order, not alphabetical.
	assert.Equal(t, SurgeonStat{Surgeon: "Dr. Chen", CaseCount: 2, AvgP50Minutes: 52.5}, stats[0])
	assert.Equal(t, SurgeonStat{Surgeon: "Dr. Okafor", CaseCount: 1, AvgP50Minutes: 120}, stats[1])
}

func TestSurgeonStatsEmpty(t *testing.T) {
	assert.Empty(t, SurgeonStats(nil))
}

func TestRoomTotals(t *testing.T) {
	cases := []model.Case{
		{Room: "OR 1 (Gen)", AIP50Minutes: 60, TurnoverMinutes: 25},
		{Room: "OR 2 (Gen)", AIP50Minutes: 90, TurnoverMinutes: 30},
		{Room: "OR 1", AIP50Minutes: 45, TurnoverMinutes: 20},
	}

	totals := RoomTotals(cases)
	require.Len(t, totals, 2)

	// "OR 1 (Gen)" and "OR 1" aggregate under the stripped name.
	assert.Equal(t, RoomTotal{Room: "OR 1", TotalMinutes: 150}, totals[0])
	assert.Equal(t, RoomTotal{Room: "OR 2", TotalMinutes: 120}, totals[1])
}

func TestPriorityCounts(t *testing.T) {
	cases := []model.Case{
		{Priority: model.PriorityUrgent},
		{Priority: model.PriorityElective},
		{Priority: model.PriorityElective},
	}

	counts := PriorityCounts(cases)
	// Fixed category order, zero categories omitted.
	assert.Equal(t, []CategoryCount{
		{Name: "Elective", Count: 2},
		{Name: "Urgent", Count: 1},
	}, counts)
}

func TestPriorityCountsEmpty(t *testing.T) {
	assert.Empty(t, PriorityCounts(nil))
}

func TestRiskCounts(t *testing.T) {
	cases := []model.Case{
		{Risk: model.RiskHigh},
		{Risk: model.RiskLow},
		{Risk: model.RiskHigh},
	}

	assert.Equal(t, []CategoryCount{
		{Name: "Low", Count: 1},
		{Name: "High", Count: 2},
	}, RiskCounts(cases))
}

func TestUtilization(t *testing.T) {
	cases := []model.Case{
		{AIP50Minutes: 300, TurnoverMinutes: 60},
		{AIP50Minutes: 600, TurnoverMinutes: 120},
		{AIP50Minutes: 200, TurnoverMinutes: 40},
	}

	// 1320 scheduled minutes over 4 rooms * 660 minutes = 50%.
	assert.Equal(t, 50, Utilization(cases, 4, testGrid))
}

func TestUtilizationRounds(t *testing.T) {
	cases := []model.Case{{AIP50Minutes: 100, TurnoverMinutes: 0}}
	// 100/660 = 15.15% -> 15
	assert.Equal(t, 15, Utilization(cases, 1, testGrid))

	cases[0].AIP50Minutes = 103
	// 103/660 = 15.6% -> 16
	assert.Equal(t, 16, Utilization(cases, 1, testGrid))
}

func TestUtilizationNoRooms(t *testing.T) {
	cases := []model.Case{{AIP50Minutes: 60, TurnoverMinutes: 25}}
	assert.Equal(t, 0, Utilization(cases, 0, testGrid))
}

func TestUtilizationNoCases(t *testing.T) {
	assert.Equal(t, 0, Utilization(nil, 4, testGrid))
}
