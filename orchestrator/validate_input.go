// ABOUTME: Validate_input node: runs when a prior ASK_* is pending and the user answered it.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/internal/dateparse"
	"github.com/formpilot/formpilot-ai/session"
)

func (d *Driver) runValidateInput(_ context.Context, s *session.Session, userMessage string) {
	fieldID := s.PendingFieldID
	now := d.clock()

	switch s.PendingActionType {
	case action.KindAskDate:
		normalized, err := dateparse.Date(userMessage, now)
		if err != nil {
			s.AppendHistory(session.RoleSystem, fmt.Sprintf(
				"The previous answer for %s could not be parsed as a date; ask again briefly", fieldID))
			return
		}
		s.Answers[fieldID] = normalized
		s.ClearPending()

	case action.KindAskDatetime:
		normalized, err := dateparse.Datetime(userMessage, now)
		if err != nil {
			s.AppendHistory(session.RoleSystem, fmt.Sprintf(
				"The previous answer for %s could not be parsed as a date; ask again briefly", fieldID))
			return
		}
		s.Answers[fieldID] = normalized
		s.ClearPending()

	case action.KindAskText:
		s.PendingTextValue = userMessage
		s.PendingTextFieldID = fieldID
		s.AppendHistory(session.RoleSystem, fmt.Sprintf(
			"VALIDATE this answer for %s: %s. If irrelevant or gibberish, re-ask the same field; otherwise move to the next field.",
			fieldID, userMessage))

	case action.KindAskDropdown, action.KindAskCheckbox, action.KindAskLocation:
		// Immediate acceptance: the UI constrains the answer shape, so the
		// message's semantic value is taken as-is.
		s.Answers[fieldID] = userMessage
		s.ClearPending()
	}
}
