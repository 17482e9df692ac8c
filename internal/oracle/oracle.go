// Package oracle is the boundary to the prediction service that enriches
// case drafts, rewrites schedules, and produces natural-language summaries.
// The deterministic core never imports anything from here; handlers depend
// on the narrow Provider interface so tests can swap in the Local provider.
package oracle

import (
	"context"
	"io"

	"or-schedule-backend/internal/model"
)

// CaseDraft is the caller-supplied portion of a new case, before the oracle
// predicts durations, turnover, priority, and risk.
type CaseDraft struct {
	PatientID              string   `json:"patientId" binding:"required"`
	Procedure              string   `json:"procedure" binding:"required"`
	Surgeon                string   `json:"surgeon" binding:"required"`
	Room                   string   `json:"room" binding:"required"`
	StartTime              string   `json:"startTime" binding:"required"`
	SurgeonEstimateMinutes int      `json:"surgeonEstimateMinutes" binding:"required"`
	Conflicts              []string `json:"conflicts"`
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Provider is the prediction oracle contract. Implementations must not
// mutate their inputs; a failed call leaves the case set untouched.
type Provider interface {
	// Enrich completes a draft into a full case, assigning its id and
	// merging caller conflicts with predicted ones.
	Enrich(ctx context.Context, draft CaseDraft) (model.Case, error)

	// Optimize returns the same cases with recomputed start times. The
	// result is rejected unless it covers exactly the input ids with only
	// start times changed.
	Optimize(ctx context.Context, cases []model.Case) ([]model.Case, error)

	// Summarize produces a short operational summary of the day.
	Summarize(ctx context.Context, cases []model.Case) (string, error)

	// ParseSchedule converts a free-text schedule into cases.
	ParseSchedule(ctx context.Context, raw string) ([]model.Case, error)

	// Chat streams a reply to the latest user message, grounded in the
	// conversation history and the current schedule.
	Chat(ctx context.Context, history []Message, message string, cases []model.Case) (io.ReadCloser, error)
}

// EmptyScheduleSummary is returned by Summarize without an oracle round trip
// when there are no cases.
const EmptyScheduleSummary = "The schedule is currently empty. Ready for new cases to be added."

// mergeConflicts combines caller-supplied and predicted conflict notes,
// de-duplicated, caller entries first.
func mergeConflicts(callerConflicts, predicted []string) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0, len(callerConflicts)+len(predicted))
	for _, lists := range [][]string{callerConflicts, predicted} {
		for _, c := range lists {
			if !seen[c] {
				seen[c] = true
				merged = append(merged, c)
			}
		}
	}
	return merged
}
