package guard

import (
	"strings"
	"testing"

	"github.com/formpilot/formpilot-ai/action"
)

func baseCtx() Context {
	return Context{
		Answers:       map[string]string{"leave_type": "Annual"},
		MissingFields: []string{"start_date", "end_date"},
		NextField:     "start_date",
		ToolForField:  map[string]string{"establishment": "get_establishments"},
	}
}

func TestEvaluate_acceptsWellFormedAskDate(t *testing.T) {
	r := Evaluate(`{"action":"ASK_DATE","field_id":"start_date","label":"Start date"}`, baseCtx())
	if !r.OK {
		t.Fatalf("expected OK, got corrective: %q", r.Corrective)
	}
	if r.Action.Kind != action.KindAskDate || r.Action.FieldID != "start_date" {
		t.Fatalf("unexpected action: %+v", r.Action)
	}
}

func TestEvaluate_unparseableJSON(t *testing.T) {
	r := Evaluate("well, I think we should ask about dates", baseCtx())
	if r.OK {
		t.Fatalf("expected a guard violation")
	}
	if !strings.Contains(r.Corrective, "ONLY the JSON object") {
		t.Fatalf("got %q", r.Corrective)
	}
}

func TestEvaluate_unknownActionKind(t *testing.T) {
	r := Evaluate(`{"action":"DO_SOMETHING","text":"hi"}`, baseCtx())
	if r.OK {
		t.Fatalf("expected a guard violation")
	}
	if !strings.Contains(r.Corrective, "MESSAGE") || !strings.Contains(r.Corrective, "FORM_COMPLETE") {
		t.Fatalf("got %q", r.Corrective)
	}
}

func TestEvaluate_reaskAnsweredField(t *testing.T) {
	r := Evaluate(`{"action":"ASK_TEXT","field_id":"leave_type","label":"Leave type"}`, baseCtx())
	if r.OK {
		t.Fatalf("expected a guard violation")
	}
	if !strings.Contains(r.Corrective, "leave_type") || !strings.Contains(r.Corrective, "Annual") {
		t.Fatalf("got %q", r.Corrective)
	}
	if !strings.Contains(r.Corrective, `"field_id":"start_date"`) {
		t.Fatalf("expected a worked example patched to the next field, got %q", r.Corrective)
	}
}

func TestEvaluate_messageWhileFieldsMissing(t *testing.T) {
	r := Evaluate(`{"action":"MESSAGE","text":"Thanks!"}`, baseCtx())
	if r.OK {
		t.Fatalf("expected a guard violation")
	}
	if !strings.Contains(r.Corrective, "start_date") {
		t.Fatalf("got %q", r.Corrective)
	}
}

func TestEvaluate_messageAllowedWhenNothingMissing(t *testing.T) {
	ctx := Context{Answers: map[string]string{"a": "1"}, MissingFields: nil}
	r := Evaluate(`{"action":"MESSAGE","text":"All set!"}`, ctx)
	if !r.OK {
		t.Fatalf("expected OK when no fields remain, got %q", r.Corrective)
	}
}

func TestEvaluate_emptyDropdownOptions(t *testing.T) {
	r := Evaluate(`{"action":"ASK_DROPDOWN","field_id":"establishment","label":"Establishment","options":[]}`, baseCtx())
	if r.OK {
		t.Fatalf("expected a guard violation")
	}
	if !strings.Contains(r.Corrective, "get_establishments") {
		t.Fatalf("got %q", r.Corrective)
	}
}

func TestEvaluate_prematureCompletion(t *testing.T) {
	r := Evaluate(`{"action":"FORM_COMPLETE","data":{}}`, baseCtx())
	if r.OK {
		t.Fatalf("expected a guard violation")
	}
	if !strings.Contains(r.Corrective, "start_date") || !strings.Contains(r.Corrective, "end_date") {
		t.Fatalf("got %q", r.Corrective)
	}
}

func TestEvaluate_completionAllowedWhenNothingMissing(t *testing.T) {
	ctx := Context{Answers: map[string]string{"a": "1"}, MissingFields: nil}
	r := Evaluate(`{"action":"FORM_COMPLETE","data":{"a":"1"}}`, ctx)
	if !r.OK {
		t.Fatalf("expected OK, got %q", r.Corrective)
	}
}

func TestEvaluate_fencedJSONIsAccepted(t *testing.T) {
	text := "```json\n{\"action\":\"ASK_DATE\",\"field_id\":\"start_date\"}\n```"
	r := Evaluate(text, baseCtx())
	if !r.OK {
		t.Fatalf("expected OK, got corrective: %q", r.Corrective)
	}
}

func TestFallback_isAMessageAction(t *testing.T) {
	a := Fallback()
	if a.Kind != action.KindMessage {
		t.Fatalf("fallback kind = %v", a.Kind)
	}
	if a.Text == "" {
		t.Fatalf("fallback should have non-empty text")
	}
}
