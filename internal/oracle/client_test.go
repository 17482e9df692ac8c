package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"or-schedule-backend/config"
	"or-schedule-backend/internal/model"
)

// newTestClient points a Client at a fake generate endpoint that replies with
// the given text.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&config.OracleConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

// replyWith returns a handler that answers every generate call with text.
func replyWith(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Text: text})
	}
}

func TestGenerateRequestShape(t *testing.T) {
	var got generateRequest
	var auth, path string
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{Text: "  A quiet day.  "})
	})

	summary, err := cl.Summarize(context.Background(), []model.Case{{ID: "a", Room: "OR 1 (Gen)", Procedure: "Lap Chole"}})
	require.NoError(t, err)
	assert.Equal(t, "A quiet day.", summary)

	assert.Equal(t, "/v1/generate", path)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "test-model", got.Model)
	assert.Contains(t, got.Prompt, "Lap Chole")
}

func TestGenerateNon200(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := cl.Summarize(context.Background(), []model.Case{{ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestEnrich(t *testing.T) {
	reply, err := json.Marshal(enrichment{
		AIP50Minutes:    60,
		AIP90Minutes:    80,
		TurnoverMinutes: 25,
		Priority:        model.PriorityElective,
		Risk:            model.RiskLow,
		Conflicts:       []string{"PACU watch", "Equipment check"},
	})
	require.NoError(t, err)
	cl := newTestClient(t, replyWith(string(reply)))

	draft := CaseDraft{
		PatientID: "P010", Procedure: "Lap Chole", Surgeon: "Dr. Chen",
		Room: "OR 1 (Gen)", StartTime: "09:00", SurgeonEstimateMinutes: 55,
		Conflicts: []string{"Equipment check"},
	}
	c, err := cl.Enrich(context.Background(), draft)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(c.ID, "case-"))
	assert.Equal(t, "P010", c.PatientID)
	assert.Equal(t, "09:00", c.StartTime)
	assert.Equal(t, 55, c.SurgeonEstimateMinutes)
	assert.Equal(t, 60, c.AIP50Minutes)
	assert.Equal(t, 80, c.AIP90Minutes)
	assert.Equal(t, 25, c.TurnoverMinutes)
	// Caller conflicts come first; duplicates collapse.
	assert.Equal(t, []string{"Equipment check", "PACU watch"}, c.Conflicts)
}

func TestEnrichRaisesInvertedP90(t *testing.T) {
	reply, err := json.Marshal(enrichment{
		AIP50Minutes: 90, AIP90Minutes: 70, TurnoverMinutes: 20,
		Priority: model.PriorityUrgent, Risk: model.RiskMedium,
	})
	require.NoError(t, err)
	cl := newTestClient(t, replyWith(string(reply)))

	c, err := cl.Enrich(context.Background(), CaseDraft{Procedure: "CABG"})
	require.NoError(t, err)
	assert.Equal(t, 90, c.AIP50Minutes)
	assert.Equal(t, 90, c.AIP90Minutes)
}

func TestEnrichRejectsBadReplies(t *testing.T) {
	testCases := []struct {
		name  string
		reply enrichment
	}{
		{
			name:  "unknown priority",
			reply: enrichment{Priority: "ASAP", Risk: model.RiskLow},
		},
		{
			name:  "unknown risk",
			reply: enrichment{Priority: model.PriorityElective, Risk: "Extreme"},
		},
		{
			name:  "negative duration",
			reply: enrichment{Priority: model.PriorityElective, Risk: model.RiskLow, AIP50Minutes: -10},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(tc.reply)
			require.NoError(t, err)
			cl := newTestClient(t, replyWith(string(body)))

			_, err = cl.Enrich(context.Background(), CaseDraft{Procedure: "Lap Chole"})
			assert.Error(t, err)
		})
	}
}

func TestEnrichMalformedJSON(t *testing.T) {
	cl := newTestClient(t, replyWith("Sure! Here is the enrichment you asked for."))
	_, err := cl.Enrich(context.Background(), CaseDraft{Procedure: "Lap Chole"})
	assert.Error(t, err)
}

func optimizeFixture() []model.Case {
	return []model.Case{
		{ID: "a", PatientID: "P001", Room: "OR 1 (Gen)", StartTime: "09:00", AIP50Minutes: 60, TurnoverMinutes: 25, Priority: model.PriorityElective, Risk: model.RiskLow, Conflicts: []string{}},
		{ID: "b", PatientID: "P002", Room: "OR 1 (Gen)", StartTime: "11:00", AIP50Minutes: 45, TurnoverMinutes: 20, Priority: model.PriorityElective, Risk: model.RiskLow, Conflicts: []string{}},
	}
}

func TestOptimize(t *testing.T) {
	cases := optimizeFixture()
	moved := optimizeFixture()
	moved[0].StartTime = "07:30"
	moved[1].StartTime = "08:55"
	reply, err := json.Marshal(moved)
	require.NoError(t, err)

	cl := newTestClient(t, replyWith(string(reply)))
	optimized, err := cl.Optimize(context.Background(), cases)
	require.NoError(t, err)
	assert.Equal(t, moved, optimized)
}

func TestOptimizeRejectsBadReplies(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func([]model.Case) []model.Case
	}{
		{
			name:   "dropped case",
			mutate: func(cs []model.Case) []model.Case { return cs[:1] },
		},
		{
			name: "unknown case id",
			mutate: func(cs []model.Case) []model.Case {
				cs[1].ID = "z"
				return cs
			},
		},
		{
			name: "duplicated case id",
			mutate: func(cs []model.Case) []model.Case {
				cs[1] = cs[0]
				return cs
			},
		},
		{
			name: "invalid start time",
			mutate: func(cs []model.Case) []model.Case {
				cs[0].StartTime = "25:00"
				return cs
			},
		},
		{
			name: "edited duration",
			mutate: func(cs []model.Case) []model.Case {
				cs[0].AIP50Minutes = 10
				return cs
			},
		},
		{
			name: "edited room",
			mutate: func(cs []model.Case) []model.Case {
				cs[0].Room = "OR 2 (Gen)"
				return cs
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reply, err := json.Marshal(tc.mutate(optimizeFixture()))
			require.NoError(t, err)
			cl := newTestClient(t, replyWith(string(reply)))

			_, err = cl.Optimize(context.Background(), optimizeFixture())
			assert.Error(t, err)
		})
	}
}

func TestSummarizeEmptySchedule(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty schedules must not reach the oracle")
	})

	summary, err := cl.Summarize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyScheduleSummary, summary)
}

func TestParseSchedule(t *testing.T) {
	parsed := []model.Case{
		{Procedure: "Lap Chole", Surgeon: "Dr. Chen", Room: "OR 1", StartTime: "08:00", AIP50Minutes: 60, AIP90Minutes: 50},
		{Procedure: "TKA", Surgeon: "Dr. Park", Room: "OR 3", StartTime: "09:30", AIP50Minutes: 90, AIP90Minutes: 110},
	}
	reply, err := json.Marshal(parsed)
	require.NoError(t, err)

	cl := newTestClient(t, replyWith(string(reply)))
	got, err := cl.ParseSchedule(context.Background(), "8am lap chole Chen OR1; 9:30 TKA Park OR3")
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, c := range got {
		assert.True(t, strings.HasPrefix(c.ID, "case-"), "case %d id %q", i, c.ID)
		assert.NotNil(t, c.Conflicts)
		assert.GreaterOrEqual(t, c.AIP90Minutes, c.AIP50Minutes)
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Equal(t, "P001", got[0].PatientID)
	assert.Equal(t, "P002", got[1].PatientID)
	// The inverted first-case P90 is raised to P50.
	assert.Equal(t, 60, got[0].AIP90Minutes)
}

func TestParseScheduleRejectsBadStartTime(t *testing.T) {
	reply, err := json.Marshal([]model.Case{{Procedure: "Lap Chole", StartTime: "early"}})
	require.NoError(t, err)

	cl := newTestClient(t, replyWith(string(reply)))
	_, err = cl.ParseSchedule(context.Background(), "whenever works")
	assert.Error(t, err)
}

func TestChatStreams(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Contains(t, req.Prompt, "user: earlier question")
		w.Write([]byte("streamed reply"))
	})

	history := []Message{{Role: "user", Content: "earlier question"}}
	body, err := cl.Chat(context.Background(), history, "what is next in OR 1?", []model.Case{{ID: "a"}})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "streamed reply", string(data))
}
