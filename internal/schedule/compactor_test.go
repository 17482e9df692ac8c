package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
)

var testRooms = []model.Room{
	{ID: "or-1", Name: "OR 1 (Gen)"},
	{ID: "or-2", Name: "OR 2 (Gen)"},
}

func mkCase(id, roomName, start string, p50, turnover int) model.Case {
	return model.Case{
		ID: id, Room: roomName, StartTime: start,
		AIP50Minutes: p50, TurnoverMinutes: turnover,
	}
}

func TestCompactRemovesGaps(t *testing.T) {
	cases := []model.Case{
		mkCase("a", "OR 1", "07:30", 60, 25),
		mkCase("b", "OR 1", "10:00", 45, 20),
	}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	require.Len(t, compacted, 2)

	assert.Equal(t, "07:30", compacted[0].StartTime)
	// 07:30 + 60 min procedure + 25 min turnover.
	assert.Equal(t, "08:55", compacted[1].StartTime)
}

func TestCompactFloorsFirstCase(t *testing.T) {
	cases := []model.Case{
		mkCase("a", "OR 1", "06:00", 30, 10),
		mkCase("b", "OR 1", "06:45", 30, 10),
	}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	assert.Equal(t, "07:30", compacted[0].StartTime)
	assert.Equal(t, "08:10", compacted[1].StartTime)
}

func TestCompactKeepsLateFirstCase(t *testing.T) {
	cases := []model.Case{mkCase("a", "OR 1", "09:15", 30, 10)}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	assert.Equal(t, "09:15", compacted[0].StartTime)
}

func TestCompactBackToBackProperty(t *testing.T) {
	cases := []model.Case{
		mkCase("a", "OR 1", "11:00", 60, 25),
		mkCase("b", "OR 1", "08:00", 45, 20),
		mkCase("c", "OR 1", "09:30", 30, 15),
		mkCase("d", "OR 2", "07:00", 120, 40),
		mkCase("e", "OR 2", "13:00", 90, 30),
	}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)

	perRoom := make(map[string][]model.Case)
	for _, c := range compacted {
		perRoom[c.Room] = append(perRoom[c.Room], c)
	}
	for roomName, roomCases := range perRoom {
		for i := 1; i < len(roomCases); i++ {
			prevStart, err := grid.TimeToMinutes(roomCases[i-1].StartTime)
			require.NoError(t, err)
			start, err := grid.TimeToMinutes(roomCases[i].StartTime)
			require.NoError(t, err)
			expected := prevStart + roomCases[i-1].AIP50Minutes + roomCases[i-1].TurnoverMinutes
			assert.Equal(t, expected, start, "room %s case %d", roomName, i)
		}
	}
}

func TestCompactOrdersByCurrentStartTime(t *testing.T) {
	// The later-submitted but earlier-starting case is packed first.
	cases := []model.Case{
		mkCase("late", "OR 1", "14:00", 30, 10),
		mkCase("early", "OR 1", "08:00", 60, 25),
	}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	assert.Equal(t, "early", compacted[0].ID)
	assert.Equal(t, "08:00", compacted[0].StartTime)
	assert.Equal(t, "late", compacted[1].ID)
	assert.Equal(t, "09:25", compacted[1].StartTime)
}

func TestCompactStableOnEqualStartTimes(t *testing.T) {
	cases := []model.Case{
		mkCase("first", "OR 1", "08:00", 30, 10),
		mkCase("second", "OR 1", "08:00", 45, 15),
	}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	assert.Equal(t, "first", compacted[0].ID)
	assert.Equal(t, "second", compacted[1].ID)
}

func TestCompactIdempotent(t *testing.T) {
	cases := []model.Case{
		mkCase("a", "OR 1", "06:10", 60, 25),
		mkCase("b", "OR 1", "09:40", 45, 20),
		mkCase("c", "OR 2", "08:20", 120, 40),
		mkCase("d", "Endoscopy 2", "10:00", 30, 10), // unresolved room
	}

	compactor := NewCompactor(testRooms)
	once, err := compactor.Compact(cases)
	require.NoError(t, err)
	twice, err := compactor.Compact(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestCompactChangesOnlyStartTime(t *testing.T) {
	original := model.Case{
		ID: "a", PatientID: "P001", Procedure: "Lap Chole", Surgeon: "Dr. Chen",
		Room: "OR 1 (Gen)", StartTime: "10:00", SurgeonEstimateMinutes: 55,
		AIP50Minutes: 60, AIP90Minutes: 80, TurnoverMinutes: 25,
		Priority: model.PriorityElective, Risk: model.RiskLow,
		Conflicts: []string{"PACU watch"},
	}

	compacted, err := NewCompactor(testRooms).Compact([]model.Case{original})
	require.NoError(t, err)
	require.Len(t, compacted, 1)

	got := compacted[0]
	want := original // only the start time may differ
	want.StartTime = got.StartTime
	assert.Equal(t, want, got)
}

func TestCompactUnresolvedRoomPassesThrough(t *testing.T) {
	cases := []model.Case{
		mkCase("known", "OR 1", "09:00", 60, 25),
		mkCase("unknown", "Cath Lab", "06:00", 45, 20),
	}

	compacted, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	require.Len(t, compacted, 2)

	// The unresolved case keeps its start time, even below the day floor.
	assert.Equal(t, "unknown", compacted[0].ID)
	assert.Equal(t, "06:00", compacted[0].StartTime)
	assert.Equal(t, "known", compacted[1].ID)
}

func TestCompactEmptyInput(t *testing.T) {
	compacted, err := NewCompactor(testRooms).Compact(nil)
	require.NoError(t, err)
	assert.Empty(t, compacted)
}

func TestCompactRejectsMalformedStartTime(t *testing.T) {
	cases := []model.Case{mkCase("a", "OR 1", "late morning", 60, 25)}

	_, err := NewCompactor(testRooms).Compact(cases)
	assert.ErrorIs(t, err, grid.ErrInvalidTimeFormat)
}

func TestCompactDoesNotMutateInput(t *testing.T) {
	cases := []model.Case{
		mkCase("a", "OR 1", "06:00", 60, 25),
		mkCase("b", "OR 1", "10:00", 45, 20),
	}

	_, err := NewCompactor(testRooms).Compact(cases)
	require.NoError(t, err)
	assert.Equal(t, "06:00", cases[0].StartTime)
	assert.Equal(t, "10:00", cases[1].StartTime)
}

func TestMoveCase(t *testing.T) {
	g := grid.Config{StartHour: 7, EndHour: 18, PixelsPerMinute: 1.5}
	original := mkCase("a", "OR 1 (Gen)", "08:00", 60, 25)

	// 225px at 1.5 px/min is 150 minutes past 07:00.
	moved := MoveCase(original, "OR 2 (Gen)", 225, g)
	assert.Equal(t, "OR 2 (Gen)", moved.Room)
	assert.Equal(t, "09:30", moved.StartTime)

	// Everything else is untouched, including the original value.
	assert.Equal(t, original.AIP50Minutes, moved.AIP50Minutes)
	assert.Equal(t, "08:00", original.StartTime)
	assert.Equal(t, "OR 1 (Gen)", original.Room)
}
