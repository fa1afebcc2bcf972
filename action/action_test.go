package action

import (
	"encoding/json"
	"testing"
)

func TestMarshalJSON_messageOmitsUnrelatedKeys(t *testing.T) {
	a := Message("hello there")
	buf, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(m) != 2 || m["action"] != "MESSAGE" || m["text"] != "hello there" {
		t.Fatalf("unexpected wire shape: %v", m)
	}
}

func TestMarshalJSON_toolCallAlwaysHasToolArgs(t *testing.T) {
	a := ToolCall("get_establishments", nil, "")
	buf, _ := json.Marshal(a)
	var m map[string]any
	json.Unmarshal(buf, &m)
	args, ok := m["tool_args"].(map[string]any)
	if !ok {
		t.Fatalf("tool_args missing or wrong type: %v", m["tool_args"])
	}
	if len(args) != 0 {
		t.Fatalf("expected empty tool_args, got %v", args)
	}
}

func TestFormComplete_copiesData(t *testing.T) {
	src := map[string]any{"leave_type": "Annual"}
	a := FormComplete(src, "")
	src["leave_type"] = "mutated"
	if a.Data["leave_type"] != "Annual" {
		t.Fatalf("FormComplete aliased caller's map: got %v", a.Data["leave_type"])
	}
}

func TestValidate_dropdownRequiresOptions(t *testing.T) {
	a := Action{Kind: KindAskDropdown, FieldID: "establishment", Label: "Establishment"}
	if err := a.Validate(); err == nil {
		t.Fatalf("expected error for empty dropdown options")
	}
}

func TestValidate_unknownKind(t *testing.T) {
	a := Action{Kind: "SOMETHING_ELSE"}
	if err := a.Validate(); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestUnmarshalJSON_roundTrip(t *testing.T) {
	a := AskDropdown("establishment", "Establishment", []string{"Riyadh Tech"}, "")
	buf, _ := json.Marshal(a)

	var got Action
	if err := json.Unmarshal(buf, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != KindAskDropdown || got.FieldID != "establishment" || len(got.Options) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestUnmarshalJSON_preservesUnknownKind(t *testing.T) {
	var got Action
	if err := json.Unmarshal([]byte(`{"action":"BOGUS"}`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != "BOGUS" {
		t.Fatalf("expected unknown kind preserved, got %q", got.Kind)
	}
	if got.Kind.Valid() {
		t.Fatalf("BOGUS should not validate as a known kind")
	}
}

func TestIsAsk(t *testing.T) {
	for _, k := range []Kind{KindAskText, KindAskDropdown, KindAskCheckbox, KindAskDate, KindAskDatetime, KindAskLocation} {
		if !k.IsAsk() {
			t.Errorf("%s should be IsAsk", k)
		}
	}
	for _, k := range []Kind{KindMessage, KindToolCall, KindFormComplete} {
		if k.IsAsk() {
			t.Errorf("%s should not be IsAsk", k)
		}
	}
}
