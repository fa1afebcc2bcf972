// ABOUTME: Greeting node: the only terminal leaf in the graph.
package orchestrator

import (
	"fmt"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/formcontext"
	"github.com/formpilot/formpilot-ai/session"
)

func (d *Driver) runGreeting(s *session.Session) action.Action {
	form, err := formcontext.Parse(s.FormContextMD)
	title := "this form"
	summary := ""
	if err == nil {
		if form.Title != "" {
			title = form.Title
		}
		summary = formcontext.SummarizeByType(s.RequiredFields, s.FieldTypes)
	}

	text := fmt.Sprintf("Hi! Let's get %s filled out. I'll need %s — ready when you are.", title, summary)
	msg := action.Message(text)

	s.AppendHistory(session.RoleAssistant, text)
	s.LogAction(msg)
	return msg
}
