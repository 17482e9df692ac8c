package oracle

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"or-schedule-backend/internal/model"
	"or-schedule-backend/internal/schedule"
)

// Local is a deterministic, offline Provider. It is the default when no
// oracle endpoint is configured and the fixture provider for tests:
// enrichment uses fixed heuristics and optimization is the deterministic
// compactor.
type Local struct {
	Rooms []model.Room

	mu     sync.Mutex
	nextID int
}

// NewLocal creates a local provider that compacts against the given
// canonical rooms.
func NewLocal(rooms []model.Room) *Local {
	return &Local{Rooms: rooms}
}

// Enrich fills in predictions from the surgeon's estimate: P50 equals the
// estimate, P90 is 1.2x rounded, turnover defaults to 25 minutes. Priority
// and risk are inferred from procedure keywords.
func (l *Local) Enrich(_ context.Context, draft CaseDraft) (model.Case, error) {
	l.mu.Lock()
	l.nextID++
	id := fmt.Sprintf("case-local-%04d", l.nextID)
	l.mu.Unlock()

	p50 := draft.SurgeonEstimateMinutes
	return model.Case{
		ID:                     id,
		PatientID:              draft.PatientID,
		Procedure:              draft.Procedure,
		Surgeon:                draft.Surgeon,
		Room:                   draft.Room,
		StartTime:              draft.StartTime,
		SurgeonEstimateMinutes: draft.SurgeonEstimateMinutes,
		AIP50Minutes:           p50,
		AIP90Minutes:           int(math.Round(float64(p50) * 1.2)),
		TurnoverMinutes:        25,
		Priority:               inferPriority(draft.Procedure),
		Risk:                   inferRisk(p50),
		Conflicts:              mergeConflicts(draft.Conflicts, nil),
	}, nil
}

// Optimize delegates to the deterministic compactor.
func (l *Local) Optimize(_ context.Context, cases []model.Case) ([]model.Case, error) {
	return schedule.NewCompactor(l.Rooms).Compact(cases)
}

// Summarize reports case and room counts without any inference.
func (l *Local) Summarize(_ context.Context, cases []model.Case) (string, error) {
	if len(cases) == 0 {
		return EmptyScheduleSummary, nil
	}
	rooms := make(map[string]bool)
	total := 0
	for _, c := range cases {
		rooms[c.Room] = true
		total += c.AIP50Minutes + c.TurnoverMinutes
	}
	return fmt.Sprintf("%d cases scheduled across %d rooms, %d minutes booked in total.", len(cases), len(rooms), total), nil
}

// ParseSchedule is not supported offline.
func (l *Local) ParseSchedule(_ context.Context, _ string) ([]model.Case, error) {
	return nil, fmt.Errorf("schedule import requires a configured oracle endpoint")
}

// Chat replies with a fixed acknowledgement naming the schedule size.
func (l *Local) Chat(_ context.Context, _ []Message, message string, cases []model.Case) (io.ReadCloser, error) {
	reply := fmt.Sprintf("There are %d cases on today's schedule. (Offline assistant; question was: %s)", len(cases), message)
	return io.NopCloser(strings.NewReader(reply)), nil
}

func inferPriority(procedure string) model.Priority {
	p := strings.ToLower(procedure)
	switch {
	case strings.Contains(p, "appendectomy") || strings.Contains(p, "trauma") || strings.Contains(p, "rupture"):
		return model.PriorityEmergent
	case strings.Contains(p, "fracture") || strings.Contains(p, "bypass") || strings.Contains(p, "cabg"):
		return model.PriorityUrgent
	default:
		return model.PriorityElective
	}
}

func inferRisk(p50Minutes int) model.Risk {
	switch {
	case p50Minutes >= 180:
		return model.RiskHigh
	case p50Minutes >= 90:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
