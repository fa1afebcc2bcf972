// ABOUTME: Finalize node: runs last on every non-greeting path.
package orchestrator

import (
	"encoding/json"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/session"
)

func (d *Driver) finalize(s *session.Session, a action.Action) action.Action {
	// Step 1: resolve a pending text answer held from validate_input.
	if s.PendingTextValue != "" {
		if a.Kind == action.KindAskText && a.FieldID == s.PendingTextFieldID {
			// Reject: discard the held value.
		} else {
			s.Answers[s.PendingTextFieldID] = s.PendingTextValue
		}
		s.PendingTextValue = ""
		s.PendingTextFieldID = ""
	}

	// Step 2 (bundled {field_id, value} pairs on a follow-up action) does not
	// apply here: every action kind's wire shape is one of the nine fixed
	// shapes in package action, none of which carries a value alongside a
	// follow-up ASK_*/TOOL_CALL/MESSAGE.

	// Step 3: update pending state from the new action.
	switch {
	case a.Kind.IsAsk():
		s.PendingFieldID = a.FieldID
		s.PendingActionType = a.Kind
	case a.Kind == action.KindToolCall:
		s.PendingToolName = a.ToolName
		s.PendingFieldID = ""
		s.PendingActionType = ""
	case a.Kind == action.KindMessage || a.Kind == action.KindFormComplete:
		s.PendingFieldID = ""
		s.PendingActionType = ""
	}

	// Step 4: FORM_COMPLETE carries the entire answers map, copied not
	// referenced, so a later mutation of Answers never changes the value
	// the client already received.
	if a.Kind == action.KindFormComplete {
		a.Data = toAnyMap(s.AnswersSnapshot())
	}

	// Step 5: append the assistant turn.
	if encoded, err := json.Marshal(a); err == nil {
		s.AppendHistory(session.RoleAssistant, string(encoded))
	}

	s.LogAction(a)
	return a
}
