package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"or-schedule-backend/internal/model"
)

func TestLocalEnrich(t *testing.T) {
	local := NewLocal(nil)

	draft := CaseDraft{
		PatientID: "P005", Procedure: "Total Knee Arthroplasty", Surgeon: "Dr. Park",
		Room: "OR 3 (Ortho)", StartTime: "10:00", SurgeonEstimateMinutes: 95,
		Conflicts: []string{"Rep tray needed"},
	}
	c, err := local.Enrich(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, 95, c.AIP50Minutes)
	assert.Equal(t, 114, c.AIP90Minutes) // round(95 * 1.2)
	assert.Equal(t, 25, c.TurnoverMinutes)
	assert.Equal(t, model.PriorityElective, c.Priority)
	assert.Equal(t, model.RiskMedium, c.Risk)
	assert.Equal(t, []string{"Rep tray needed"}, c.Conflicts)
}

func TestLocalEnrichAssignsUniqueIDs(t *testing.T) {
	local := NewLocal(nil)

	a, err := local.Enrich(context.Background(), CaseDraft{Procedure: "Lap Chole"})
	require.NoError(t, err)
	b, err := local.Enrich(context.Background(), CaseDraft{Procedure: "Lap Chole"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLocalInference(t *testing.T) {
	testCases := []struct {
		procedure string
		estimate  int
		priority  model.Priority
		risk      model.Risk
	}{
		{procedure: "Emergency Appendectomy", estimate: 45, priority: model.PriorityEmergent, risk: model.RiskLow},
		{procedure: "Hip Fracture Repair", estimate: 120, priority: model.PriorityUrgent, risk: model.RiskMedium},
		{procedure: "CABG x3", estimate: 240, priority: model.PriorityUrgent, risk: model.RiskHigh},
		{procedure: "Cataract Extraction", estimate: 30, priority: model.PriorityElective, risk: model.RiskLow},
	}

	local := NewLocal(nil)
	for _, tc := range testCases {
		t.Run(tc.procedure, func(t *testing.T) {
			c, err := local.Enrich(context.Background(), CaseDraft{Procedure: tc.procedure, SurgeonEstimateMinutes: tc.estimate})
			require.NoError(t, err)
			assert.Equal(t, tc.priority, c.Priority)
			assert.Equal(t, tc.risk, c.Risk)
		})
	}
}

func TestLocalOptimizeCompacts(t *testing.T) {
	rooms := []model.Room{{ID: "or-1", Name: "OR 1 (Gen)"}}
	local := NewLocal(rooms)

	cases := []model.Case{
		{ID: "a", Room: "OR 1", StartTime: "07:30", AIP50Minutes: 60, TurnoverMinutes: 25},
		{ID: "b", Room: "OR 1", StartTime: "10:00", AIP50Minutes: 45, TurnoverMinutes: 20},
	}
	optimized, err := local.Optimize(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, optimized, 2)
	assert.Equal(t, "07:30", optimized[0].StartTime)
	assert.Equal(t, "08:55", optimized[1].StartTime)
}

func TestLocalSummarize(t *testing.T) {
	local := NewLocal(nil)

	summary, err := local.Summarize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyScheduleSummary, summary)

	summary, err = local.Summarize(context.Background(), []model.Case{
		{Room: "OR 1 (Gen)", AIP50Minutes: 60, TurnoverMinutes: 25},
		{Room: "OR 2 (Gen)", AIP50Minutes: 45, TurnoverMinutes: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 cases scheduled across 2 rooms, 150 minutes booked in total.", summary)
}

func TestLocalParseScheduleUnsupported(t *testing.T) {
	_, err := NewLocal(nil).ParseSchedule(context.Background(), "8am lap chole")
	assert.Error(t, err)
}
