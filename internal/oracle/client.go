package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"or-schedule-backend/config"
	"or-schedule-backend/internal/grid"
	"or-schedule-backend/internal/model"
)

// Client talks to a generative prediction service over HTTP. Every call is a
// single POST to the service's generate endpoint carrying a system
// instruction and a prompt; structured calls additionally request a JSON
// reply and unmarshal it.
type Client struct {
	cfg    *config.OracleConfig
	client *http.Client
}

// NewClient creates an oracle client from the configured endpoint.
func NewClient(cfg *config.OracleConfig) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: invalid proxy URL %q: %v. Oracle client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	JSON   bool   `json:"json,omitempty"`
	Stream bool   `json:"stream,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

const (
	enrichSystem   = "You are an expert OR scheduling AI. Enrich case data by predicting operational details. Reply with JSON only."
	optimizeSystem = "You are an expert OR scheduler. Re-sequence cases within their rooms to remove idle gaps, changing only startTime. Reply with the full JSON case array."
	summarySystem  = "You are an expert assistant for operating-room scheduling analysis."
	parseSystem    = "You are a data extraction assistant. Convert unstructured schedule text into a JSON array of surgical cases."
	chatSystem     = "You are an assistant for an operating-room scheduler. Answer only from the provided schedule data. Refer to cases by patientId and never invent patient details."
)

// generate performs one round trip and returns the reply text.
func (cl *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	resp, err := cl.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read oracle response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal oracle response: %w", err)
	}
	return strings.TrimSpace(genResp.Text), nil
}

func (cl *Client) post(ctx context.Context, req generateRequest) (*http.Response, error) {
	req.Model = cl.cfg.Model

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oracle request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.cfg.BaseURL+"/v1/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cl.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cl.cfg.APIKey)
	}

	resp, err := cl.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("oracle returned non-200 status code: %d", resp.StatusCode)
	}
	return resp, nil
}

// enrichment is the oracle's predicted portion of a case.
type enrichment struct {
	AIP50Minutes    int            `json:"aiP50Minutes"`
	AIP90Minutes    int            `json:"aiP90Minutes"`
	TurnoverMinutes int            `json:"turnoverMinutes"`
	Priority        model.Priority `json:"priority"`
	Risk            model.Risk     `json:"risk"`
	Conflicts       []string       `json:"conflicts"`
}

// Enrich asks the oracle to predict durations, turnover, priority, risk, and
// extra conflicts for a draft, then assembles the full case. The P90 value is
// raised to P50 when the oracle returns an inverted pair.
func (cl *Client) Enrich(ctx context.Context, draft CaseDraft) (model.Case, error) {
	prompt := fmt.Sprintf(
		"Predict the missing operational fields for this surgical case.\nProcedure: %s\nSurgeon: %s\nSurgeon's estimate: %d minutes\nKnown conflicts: %s\n"+
			"Return JSON with aiP50Minutes, aiP90Minutes, turnoverMinutes, priority (Elective|Urgent|Emergent), risk (Low|Medium|High), and conflicts (including any typical resource requirements).",
		draft.Procedure, draft.Surgeon, draft.SurgeonEstimateMinutes, conflictList(draft.Conflicts))

	text, err := cl.generate(ctx, generateRequest{System: enrichSystem, Prompt: prompt, JSON: true})
	if err != nil {
		return model.Case{}, err
	}

	var e enrichment
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return model.Case{}, fmt.Errorf("failed to unmarshal enrichment: %w", err)
	}
	if err := validateEnrichment(e); err != nil {
		return model.Case{}, err
	}
	if e.AIP90Minutes < e.AIP50Minutes {
		e.AIP90Minutes = e.AIP50Minutes
	}

	return model.Case{
		ID:                     newCaseID(),
		PatientID:              draft.PatientID,
		Procedure:              draft.Procedure,
		Surgeon:                draft.Surgeon,
		Room:                   draft.Room,
		StartTime:              draft.StartTime,
		SurgeonEstimateMinutes: draft.SurgeonEstimateMinutes,
		AIP50Minutes:           e.AIP50Minutes,
		AIP90Minutes:           e.AIP90Minutes,
		TurnoverMinutes:        e.TurnoverMinutes,
		Priority:               e.Priority,
		Risk:                   e.Risk,
		Conflicts:              mergeConflicts(draft.Conflicts, e.Conflicts),
	}, nil
}

// Optimize sends the whole schedule and expects it back with new start
// times. Any other change, or a missing or extra case, rejects the reply.
func (cl *Client) Optimize(ctx context.Context, cases []model.Case) ([]model.Case, error) {
	casesJSON, err := json.Marshal(cases)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cases: %w", err)
	}

	prompt := fmt.Sprintf(
		"Re-sequence the cases within their assigned rooms to minimize idle time. Change only startTime; the first case per room starts at or after 07:30, "+
			"and each later case starts when the previous one ends (startTime + aiP50Minutes) plus its turnoverMinutes. Return the complete JSON array sorted by new start time.\n\nSchedule:\n%s",
		casesJSON)

	text, err := cl.generate(ctx, generateRequest{System: optimizeSystem, Prompt: prompt, JSON: true})
	if err != nil {
		return nil, err
	}

	var optimized []model.Case
	if err := json.Unmarshal([]byte(text), &optimized); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimized schedule: %w", err)
	}
	if err := validateOptimized(cases, optimized); err != nil {
		return nil, err
	}
	return optimized, nil
}

// validateOptimized rejects an oracle reply that drops, invents, or edits
// cases beyond their start times.
func validateOptimized(before, after []model.Case) error {
	if len(after) != len(before) {
		return fmt.Errorf("optimized schedule has %d cases, want %d", len(after), len(before))
	}
	byID := make(map[string]model.Case, len(before))
	for _, c := range before {
		byID[c.ID] = c
	}
	for _, c := range after {
		orig, ok := byID[c.ID]
		if !ok {
			return fmt.Errorf("optimized schedule contains unknown case %s", c.ID)
		}
		if _, err := grid.TimeToMinutes(c.StartTime); err != nil {
			return fmt.Errorf("optimized case %s: %w", c.ID, err)
		}
		if !sameExceptStartTime(orig, c) {
			return fmt.Errorf("optimized schedule changed more than startTime for case %s", c.ID)
		}
		delete(byID, c.ID)
	}
	return nil
}

// sameExceptStartTime compares every schedulable field except StartTime and
// the bookkeeping timestamps.
func sameExceptStartTime(a, b model.Case) bool {
	if a.PatientID != b.PatientID || a.Procedure != b.Procedure || a.Surgeon != b.Surgeon || a.Room != b.Room {
		return false
	}
	if a.SurgeonEstimateMinutes != b.SurgeonEstimateMinutes ||
		a.AIP50Minutes != b.AIP50Minutes ||
		a.AIP90Minutes != b.AIP90Minutes ||
		a.TurnoverMinutes != b.TurnoverMinutes {
		return false
	}
	if a.Priority != b.Priority || a.Risk != b.Risk {
		return false
	}
	if len(a.Conflicts) != len(b.Conflicts) {
		return false
	}
	for i := range a.Conflicts {
		if a.Conflicts[i] != b.Conflicts[i] {
			return false
		}
	}
	return true
}

// Summarize produces a daily operational summary. An empty schedule is
// answered locally.
func (cl *Client) Summarize(ctx context.Context, cases []model.Case) (string, error) {
	if len(cases) == 0 {
		return EmptyScheduleSummary, nil
	}

	var lines []string
	for _, c := range cases {
		lines = append(lines, fmt.Sprintf("- Room %s: %s (%s) at %s for %dmin. Priority: %s, Risk: %s. Conflicts: %s",
			c.Room, c.Procedure, c.Surgeon, c.StartTime, c.AIP50Minutes, c.Priority, c.Risk, conflictList(c.Conflicts)))
	}

	prompt := fmt.Sprintf(
		"Review today's OR schedule and summarize the day's operations: overall status, potential risks and bottlenecks, and efficiency opportunities. Keep it concise and actionable.\n\nToday's schedule:\n%s",
		strings.Join(lines, "\n"))

	return cl.generate(ctx, generateRequest{System: summarySystem, Prompt: prompt})
}

// ParseSchedule converts free-text schedule notes into cases, assigning ids
// and sequential patient ids.
func (cl *Client) ParseSchedule(ctx context.Context, raw string) ([]model.Case, error) {
	prompt := fmt.Sprintf(
		"Parse the following raw schedule text into a JSON array of surgical cases with procedure, surgeon, room, startTime (HH:mm), surgeonEstimateMinutes, aiP50Minutes, aiP90Minutes, turnoverMinutes, priority, risk, and conflicts. Infer sensible values where the text is silent.\n\nRaw text:\n---\n%s\n---",
		raw)

	text, err := cl.generate(ctx, generateRequest{System: parseSystem, Prompt: prompt, JSON: true})
	if err != nil {
		return nil, err
	}

	var parsed []model.Case
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parsed schedule: %w", err)
	}

	base := time.Now().UnixNano()
	for i := range parsed {
		parsed[i].ID = fmt.Sprintf("case-%d-%d", base, i)
		parsed[i].PatientID = fmt.Sprintf("P%03d", i+1)
		if parsed[i].Conflicts == nil {
			parsed[i].Conflicts = []string{}
		}
		if parsed[i].AIP90Minutes < parsed[i].AIP50Minutes {
			parsed[i].AIP90Minutes = parsed[i].AIP50Minutes
		}
		if _, err := grid.TimeToMinutes(parsed[i].StartTime); err != nil {
			return nil, fmt.Errorf("parsed case %d: %w", i, err)
		}
	}
	return parsed, nil
}

// Chat streams a reply grounded in the conversation history and the current
// schedule. The caller owns the returned reader.
func (cl *Client) Chat(ctx context.Context, history []Message, message string, cases []model.Case) (io.ReadCloser, error) {
	scheduleJSON, err := json.Marshal(cases)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule context: %w", err)
	}

	var transcript strings.Builder
	for _, m := range history {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	prompt := fmt.Sprintf("Current OR schedule:\n```json\n%s\n```\n\nConversation so far:\n%s\nBased on the schedule above, answer the user's question: %q",
		scheduleJSON, transcript.String(), message)

	resp, err := cl.post(ctx, generateRequest{System: chatSystem, Prompt: prompt, Stream: true})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func newCaseID() string {
	return fmt.Sprintf("case-%d", time.Now().UnixNano())
}

func conflictList(conflicts []string) string {
	if len(conflicts) == 0 {
		return "None"
	}
	return strings.Join(conflicts, ", ")
}

func validateEnrichment(e enrichment) error {
	validPriority := map[model.Priority]bool{model.PriorityElective: true, model.PriorityUrgent: true, model.PriorityEmergent: true}
	validRisk := map[model.Risk]bool{model.RiskLow: true, model.RiskMedium: true, model.RiskHigh: true}
	if !validPriority[e.Priority] {
		return fmt.Errorf("oracle returned unknown priority %q", e.Priority)
	}
	if !validRisk[e.Risk] {
		return fmt.Errorf("oracle returned unknown risk %q", e.Risk)
	}
	if e.AIP50Minutes < 0 || e.AIP90Minutes < 0 || e.TurnoverMinutes < 0 {
		return fmt.Errorf("oracle returned negative duration")
	}
	return nil
}
