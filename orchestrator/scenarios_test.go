package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/llm"
	"github.com/formpilot/formpilot-ai/session"
)

// fakeLLM returns one canned response per call, in order.
type fakeLLM struct {
	responses   []string
	calls       int
	seenPrompts []string
}

func (f *fakeLLM) Complete(_ context.Context, systemPrompt string, _ []llm.Message) (llm.Response, error) {
	f.seenPrompts = append(f.seenPrompts, systemPrompt)
	if f.calls >= len(f.responses) {
		return llm.Response{}, errors.New("fakeLLM: no more canned responses")
	}
	text := f.responses[f.calls]
	f.calls++
	return llm.Response{Text: text}, nil
}

const leaveForm = `# Annual Leave Request

## Fields
- leave_type (dropdown, required): options: Annual, Sick, Unpaid
- start_date (date, required)
- end_date (date, required)
`

const injuryForm = `# Injury Report

## Fields
- establishment (dropdown, required, tool: get_establishments)
- injury_description (text, required)
`

func newTestDriver(responses ...string) (*Driver, *fakeLLM) {
	f := &fakeLLM{responses: responses}
	return NewDriver(f), f
}

func TestScenario1_Greeting(t *testing.T) {
	store := session.NewStore(0)
	s, err := store.Create(leaveForm, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	d, _ := newTestDriver()
	out, err := d.Run(context.Background(), s, Input{UserMessage: ""})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Action.Kind != action.KindMessage {
		t.Fatalf("expected MESSAGE, got %v", out.Action.Kind)
	}
	if !strings.Contains(out.Action.Text, "Annual Leave Request") {
		t.Errorf("greeting should reference the form title: %q", out.Action.Text)
	}
	for _, field := range []string{"leave_type", "start_date", "end_date"} {
		if s.FieldTypes[field] == "" {
			t.Errorf("missing field type for %s", field)
		}
	}
	if len(out.Answers) != 0 {
		t.Fatalf("expected empty answers, got %v", out.Answers)
	}
	if s.InitialExtractionDone {
		t.Fatalf("initial_extraction_done should still be false")
	}
}

func TestScenario2_BulkExtractionComplete(t *testing.T) {
	store := session.NewStore(0)
	s, _ := store.Create(leaveForm, "")

	d, _ := newTestDriver(`{"intent":"multi_answer","answers":{"leave_type":"Annual","start_date":"2026-03-01","end_date":"2026-03-10"},"message":"ok"}`)

	out, err := d.Run(context.Background(), s, Input{UserMessage: "Annual leave from 2026-03-01 to 2026-03-10"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Action.Kind != action.KindFormComplete {
		t.Fatalf("expected FORM_COMPLETE, got %v", out.Action.Kind)
	}
	want := map[string]string{"leave_type": "Annual", "start_date": "2026-03-01", "end_date": "2026-03-10"}
	for k, v := range want {
		if out.Answers[k] != v {
			t.Errorf("answers[%s] = %q, want %q", k, out.Answers[k], v)
		}
	}
	for k, v := range want {
		if got := out.Action.Data[k]; got != v {
			t.Errorf("Data[%s] = %v, want %v", k, got, v)
		}
	}
}

func TestScenario3_BulkExtractionPartial(t *testing.T) {
	store := session.NewStore(0)
	s, _ := store.Create(leaveForm, "")

	d, _ := newTestDriver(
		`{"intent":"multi_answer","answers":{"leave_type":"Annual","start_date":"2026-03-01"},"message":"ok"}`,
		`{"action":"ASK_DATE","field_id":"end_date","label":"End date"}`,
	)

	out, err := d.Run(context.Background(), s, Input{UserMessage: "Annual leave starting 2026-03-01"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Action.Kind != action.KindAskDate || out.Action.FieldID != "end_date" {
		t.Fatalf("expected ASK_DATE{end_date}, got %+v", out.Action)
	}
	if out.Answers["leave_type"] != "Annual" || out.Answers["start_date"] != "2026-03-01" {
		t.Fatalf("unexpected answers: %v", out.Answers)
	}
	if _, ok := out.Answers["end_date"]; ok {
		t.Fatalf("end_date should not be answered yet")
	}
}

func TestScenario4_InvalidDateRejected(t *testing.T) {
	store := session.NewStore(0)
	s, _ := store.Create(leaveForm, "")

	d, _ := newTestDriver(
		`{"intent":"multi_answer","answers":{"leave_type":"Annual","start_date":"2026-03-01"},"message":"ok"}`,
		`{"action":"ASK_DATE","field_id":"end_date","label":"End date"}`,
	)
	if _, err := d.Run(context.Background(), s, Input{UserMessage: "Annual leave starting 2026-03-01"}); err != nil {
		t.Fatalf("Run (setup turn): %v", err)
	}
	if s.PendingFieldID != "end_date" {
		t.Fatalf("expected pending_field_id = end_date, got %q", s.PendingFieldID)
	}

	d.LLM = &fakeLLM{responses: []string{`{"action":"ASK_DATE","field_id":"end_date","label":"End date"}`}}

	out, err := d.Run(context.Background(), s, Input{UserMessage: "asdf"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Action.Kind != action.KindAskDate || out.Action.FieldID != "end_date" {
		t.Fatalf("expected ASK_DATE{end_date} again, got %+v", out.Action)
	}
	if _, ok := out.Answers["end_date"]; ok {
		t.Fatalf("end_date must remain unanswered after an invalid date")
	}
}

func TestScenario5_ToolCallRoundTrip(t *testing.T) {
	store := session.NewStore(0)
	s, _ := store.Create(injuryForm, "")

	d, _ := newTestDriver()
	if _, err := d.Run(context.Background(), s, Input{UserMessage: ""}); err != nil {
		t.Fatalf("greeting turn: %v", err)
	}

	d.LLM = &fakeLLM{responses: []string{`{"action":"TOOL_CALL","tool_name":"get_establishments","tool_args":{}}`}}
	out, err := d.Run(context.Background(), s, Input{UserMessage: "I had an injury"})
	if err != nil {
		t.Fatalf("extraction turn: %v", err)
	}
	if out.Action.Kind != action.KindToolCall || out.Action.ToolName != "get_establishments" {
		t.Fatalf("expected TOOL_CALL{get_establishments}, got %+v", out.Action)
	}
	if s.PendingToolName != "get_establishments" {
		t.Fatalf("pending_tool_name = %q", s.PendingToolName)
	}

	d.LLM = &fakeLLM{responses: []string{
		`{"action":"ASK_DROPDOWN","field_id":"establishment","label":"Establishment","options":["Riyadh Tech"]}`,
	}}
	out, err = d.Run(context.Background(), s, Input{
		ToolResults: []ToolResult{{
			ToolName: "get_establishments",
			Result:   []byte(`{"establishments":[{"name":{"english":"Riyadh Tech"}}]}`),
		}},
	})
	if err != nil {
		t.Fatalf("tool_handler turn: %v", err)
	}
	if out.Action.Kind != action.KindAskDropdown || out.Action.FieldID != "establishment" {
		t.Fatalf("expected ASK_DROPDOWN{establishment}, got %+v", out.Action)
	}
	if len(out.Action.Options) != 1 || out.Action.Options[0] != "Riyadh Tech" {
		t.Fatalf("unexpected options: %v", out.Action.Options)
	}
	if s.PendingToolName != "" {
		t.Fatalf("pending_tool_name should be cleared once matched")
	}
}

func TestScenario6_TextRejection(t *testing.T) {
	store := session.NewStore(0)
	s, _ := store.Create(injuryForm, "")
	s.InitialExtractionDone = true
	s.PendingFieldID = "injury_description"
	s.PendingActionType = action.KindAskText

	d, _ := newTestDriver(`{"action":"ASK_TEXT","field_id":"injury_description","label":"Describe the injury"}`)

	out, err := d.Run(context.Background(), s, Input{UserMessage: "qwerty"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Action.Kind != action.KindAskText || out.Action.FieldID != "injury_description" {
		t.Fatalf("expected ASK_TEXT{injury_description} again, got %+v", out.Action)
	}
	if _, ok := out.Answers["injury_description"]; ok {
		t.Fatalf("answers should not include the rejected value")
	}
	if s.PendingTextValue != "" {
		t.Fatalf("pending_text_value should be cleared, got %q", s.PendingTextValue)
	}
}
