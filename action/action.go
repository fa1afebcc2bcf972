// ABOUTME: Tagged-variant Action model for the nine UI action kinds the orchestrator can emit.
// ABOUTME: Provides construction helpers, the Kind enum, and wire-format (de)serialization.
package action

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which of the nine action shapes an Action carries.
type Kind string

const (
	KindMessage      Kind = "MESSAGE"
	KindAskText      Kind = "ASK_TEXT"
	KindAskDropdown  Kind = "ASK_DROPDOWN"
	KindAskCheckbox  Kind = "ASK_CHECKBOX"
	KindAskDate      Kind = "ASK_DATE"
	KindAskDatetime  Kind = "ASK_DATETIME"
	KindAskLocation  Kind = "ASK_LOCATION"
	KindToolCall     Kind = "TOOL_CALL"
	KindFormComplete Kind = "FORM_COMPLETE"
)

// Kinds lists every valid Kind in catalog order, matching the action catalog.
var Kinds = []Kind{
	KindMessage, KindAskText, KindAskDropdown, KindAskCheckbox,
	KindAskDate, KindAskDatetime, KindAskLocation, KindToolCall, KindFormComplete,
}

// Valid reports whether k is one of the nine recognized action kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsAsk reports whether k is one of the six ASK_* kinds.
func (k Kind) IsAsk() bool {
	switch k {
	case KindAskText, KindAskDropdown, KindAskCheckbox, KindAskDate, KindAskDatetime, KindAskLocation:
		return true
	default:
		return false
	}
}

// Action is the tagged union described in the Only the fields relevant
// to Kind are populated; the rest stay at their zero value. snake_case JSON
// tags are the wire contract.
type Action struct {
	Kind Kind `json:"action"`

	// MESSAGE
	Text string `json:"text,omitempty"`

	// ASK_TEXT, ASK_DROPDOWN, ASK_CHECKBOX, ASK_DATE, ASK_DATETIME, ASK_LOCATION
	FieldID string   `json:"field_id,omitempty"`
	Label   string   `json:"label,omitempty"`
	Options []string `json:"options,omitempty"`
	Message string   `json:"message,omitempty"`

	// TOOL_CALL
	ToolName string         `json:"tool_name,omitempty"`
	ToolArgs map[string]any `json:"tool_args,omitempty"`

	// FORM_COMPLETE
	Data map[string]any `json:"data,omitempty"`
}

// Message constructs a MESSAGE action.
func Message(text string) Action {
	return Action{Kind: KindMessage, Text: text}
}

// AskText constructs an ASK_TEXT action.
func AskText(fieldID, label, message string) Action {
	return Action{Kind: KindAskText, FieldID: fieldID, Label: label, Message: message}
}

// AskDropdown constructs an ASK_DROPDOWN action. Options must be non-empty.
func AskDropdown(fieldID, label string, options []string, message string) Action {
	return Action{Kind: KindAskDropdown, FieldID: fieldID, Label: label, Options: options, Message: message}
}

// AskCheckbox constructs an ASK_CHECKBOX action.
func AskCheckbox(fieldID, label string, options []string, message string) Action {
	return Action{Kind: KindAskCheckbox, FieldID: fieldID, Label: label, Options: options, Message: message}
}

// AskDate constructs an ASK_DATE action.
func AskDate(fieldID, label, message string) Action {
	return Action{Kind: KindAskDate, FieldID: fieldID, Label: label, Message: message}
}

// AskDatetime constructs an ASK_DATETIME action.
func AskDatetime(fieldID, label, message string) Action {
	return Action{Kind: KindAskDatetime, FieldID: fieldID, Label: label, Message: message}
}

// AskLocation constructs an ASK_LOCATION action.
func AskLocation(fieldID, label, message string) Action {
	return Action{Kind: KindAskLocation, FieldID: fieldID, Label: label, Message: message}
}

// ToolCall constructs a TOOL_CALL action. toolArgs must never be nil on the
// wire; a nil map here is normalized to an empty map by MarshalJSON.
func ToolCall(toolName string, toolArgs map[string]any, message string) Action {
	if toolArgs == nil {
		toolArgs = map[string]any{}
	}
	return Action{Kind: KindToolCall, ToolName: toolName, ToolArgs: toolArgs, Message: message}
}

// FormComplete constructs a FORM_COMPLETE action. data is copied, never aliased,
// so the caller's map can't be mutated out from under the stored action.
func FormComplete(data map[string]any, message string) Action {
	cp := make(map[string]any, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return Action{Kind: KindFormComplete, Data: cp, Message: message}
}

// Validate checks that a's populated fields match its declared Kind's shape
// contract.
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("action: unknown kind %q", a.Kind)
	}
	switch a.Kind {
	case KindMessage:
		if a.Text == "" {
			return fmt.Errorf("action: MESSAGE requires text")
		}
	case KindAskText, KindAskDate, KindAskDatetime, KindAskLocation:
		if a.FieldID == "" {
			return fmt.Errorf("action: %s requires field_id", a.Kind)
		}
	case KindAskDropdown, KindAskCheckbox:
		if a.FieldID == "" {
			return fmt.Errorf("action: %s requires field_id", a.Kind)
		}
		if len(a.Options) == 0 {
			return fmt.Errorf("action: %s requires non-empty options", a.Kind)
		}
	case KindToolCall:
		if a.ToolName == "" {
			return fmt.Errorf("action: TOOL_CALL requires tool_name")
		}
		if a.ToolArgs == nil {
			return fmt.Errorf("action: TOOL_CALL requires tool_args (even if empty)")
		}
	case KindFormComplete:
		if a.Data == nil {
			return fmt.Errorf("action: FORM_COMPLETE requires data")
		}
	}
	return nil
}

// MarshalJSON renders a into the wire format: a flat snake_case object
// with only the keys relevant to its Kind present.
func (a Action) MarshalJSON() ([]byte, error) {
	out := map[string]any{"action": string(a.Kind)}
	switch a.Kind {
	case KindMessage:
		out["text"] = a.Text
	case KindAskText, KindAskDate, KindAskDatetime, KindAskLocation:
		out["field_id"] = a.FieldID
		out["label"] = a.Label
		if a.Message != "" {
			out["message"] = a.Message
		}
	case KindAskDropdown, KindAskCheckbox:
		out["field_id"] = a.FieldID
		out["label"] = a.Label
		out["options"] = a.Options
		if a.Options == nil {
			out["options"] = []string{}
		}
		if a.Message != "" {
			out["message"] = a.Message
		}
	case KindToolCall:
		out["tool_name"] = a.ToolName
		toolArgs := a.ToolArgs
		if toolArgs == nil {
			toolArgs = map[string]any{}
		}
		out["tool_args"] = toolArgs
		if a.Message != "" {
			out["message"] = a.Message
		}
	case KindFormComplete:
		data := a.Data
		if data == nil {
			data = map[string]any{}
		}
		out["data"] = data
		if a.Message != "" {
			out["message"] = a.Message
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the wire format into a tagged Action. Unknown
// "action" values are preserved as-is (not rejected here) so guards can
// detect and correct them "Unknown action kind" rule.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind     string         `json:"action"`
		Text     string         `json:"text"`
		FieldID  string         `json:"field_id"`
		Label    string         `json:"label"`
		Options  []string       `json:"options"`
		Message  string         `json:"message"`
		ToolName string         `json:"tool_name"`
		ToolArgs map[string]any `json:"tool_args"`
		Data     map[string]any `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Action{
		Kind:     Kind(raw.Kind),
		Text:     raw.Text,
		FieldID:  raw.FieldID,
		Label:    raw.Label,
		Options:  raw.Options,
		Message:  raw.Message,
		ToolName: raw.ToolName,
		ToolArgs: raw.ToolArgs,
		Data:     raw.Data,
	}
	return nil
}
