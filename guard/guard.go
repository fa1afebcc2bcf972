// ABOUTME: Output guards for the conversation node's LLM response.
// ABOUTME: Pure evaluation of one parsed action against session state; the retry loop itself lives in the orchestrator.
package guard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/internal/jsonutil"
)

// Context is the session-state slice a guard needs to judge one action.
type Context struct {
	Answers       map[string]string
	MissingFields []string
	NextField     string
	ToolForField  map[string]string // field_id -> tool name, for the empty-dropdown guard
}

// Result is the outcome of evaluating one LLM response.
type Result struct {
	Action     action.Action
	OK         bool
	Corrective string // non-empty iff !OK; the message to append and retry with
}

// unparseableMessage and unknownKindMessage are the two guard messages that
// do not depend on session state.
const unparseableMessage = "Respond with ONLY the JSON object — no prose, no fences."

// Evaluate extracts a JSON action object from raw LLM text and runs the
// guard sequence in the order, stopping at the first violation.
func Evaluate(text string, ctx Context) Result {
	raw, err := jsonutil.ExtractObject(text)
	if err != nil {
		return Result{OK: false, Corrective: unparseableMessage}
	}

	var a action.Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return Result{OK: false, Corrective: unparseableMessage}
	}

	if !a.Kind.Valid() {
		return Result{OK: false, Corrective: unknownKindMessage()}
	}
	if shapeErr := checkShape(a); shapeErr {
		return Result{OK: false, Corrective: unknownKindMessage()}
	}

	if a.Kind.IsAsk() {
		if value, answered := ctx.Answers[a.FieldID]; answered {
			return Result{OK: false, Corrective: reaskMessage(raw, a.FieldID, value, ctx.NextField)}
		}
	}

	if a.Kind == action.KindMessage && len(ctx.MissingFields) > 0 {
		return Result{OK: false, Corrective: messageWhileMissingMessage(ctx.NextField)}
	}

	if a.Kind == action.KindAskDropdown && len(a.Options) == 0 {
		return Result{OK: false, Corrective: emptyDropdownMessage(ctx.ToolForField[a.FieldID])}
	}

	if a.Kind == action.KindFormComplete && len(ctx.MissingFields) > 0 {
		return Result{OK: false, Corrective: prematureCompletionMessage(ctx.MissingFields, ctx.NextField)}
	}

	return Result{Action: a, OK: true}
}

// checkShape reports whether a is missing a key its kind structurally
// requires. Empty ASK_DROPDOWN/ASK_CHECKBOX options are deliberately NOT a
// shape error here — that case has its own dedicated guard and corrective
// message below, so a well-formed-but-empty dropdown does not get folded
// into the generic "unknown action kind" message.
func checkShape(a action.Action) bool {
	switch a.Kind {
	case action.KindMessage:
		return a.Text == ""
	case action.KindAskText, action.KindAskDate, action.KindAskDatetime, action.KindAskLocation:
		return a.FieldID == ""
	case action.KindAskDropdown, action.KindAskCheckbox:
		return a.FieldID == ""
	case action.KindToolCall:
		return a.ToolName == "" || a.ToolArgs == nil
	case action.KindFormComplete:
		return a.Data == nil
	default:
		return false
	}
}

func unknownKindMessage() string {
	return fmt.Sprintf(
		"The only allowed values are: %s.",
		strings.Join(action.KnownKindNames(), ", "),
	)
}

// reaskMessage builds the corrective text for a re-ask violation, including
// a worked example: the model's own rejected action with field_id patched
// to the next missing field, so it sees the minimal fix rather than having
// to reconstruct the whole action shape from the prose alone.
func reaskMessage(raw []byte, fieldID, value, next string) string {
	corrected := jsonutil.SetString(raw, "field_id", next)
	return fmt.Sprintf(
		"Field `%s` is already answered with `%s`; ask the next missing field instead. For example: %s",
		fieldID, value, string(corrected),
	)
}

func messageWhileMissingMessage(next string) string {
	return fmt.Sprintf("Use the correct ASK_* action for `%s`, not MESSAGE.", next)
}

func emptyDropdownMessage(tool string) string {
	return fmt.Sprintf(
		"Emit TOOL_CALL for `%s` first; do not ask a dropdown with empty options.", tool,
	)
}

func prematureCompletionMessage(missing []string, next string) string {
	return fmt.Sprintf(
		"Required fields still missing: `%s`; ask `%s`.",
		strings.Join(missing, ", "), next,
	)
}

// Fallback is the terminal MESSAGE action emitted when every retry is
// exhausted (the "On the final failure" clause).
func Fallback() action.Action {
	return action.Message("I had trouble understanding — please rephrase.")
}
