// ABOUTME: The routing function: five ordered rules evaluated once at the start of a turn.
package orchestrator

import "github.com/formpilot/formpilot-ai/session"

type routeKind int

const (
	routeGreeting routeKind = iota
	routeToolHandler
	routeValidateInput
	routeExtraction
	routeConversation
)

// route evaluates the routing rules, in order, and returns which path this
// turn takes. Every non-greeting path ends in finalize, usually after
// conversation; an extraction turn that yields a direct action or completes
// the form skips conversation. Greeting is the only terminal leaf.
func route(s *session.Session, in Input) routeKind {
	if len(s.ConversationHistory) == 0 && in.UserMessage == "" {
		return routeGreeting
	}
	if len(in.ToolResults) > 0 {
		return routeToolHandler
	}
	if s.PendingFieldID != "" && in.UserMessage != "" {
		return routeValidateInput
	}
	if !s.InitialExtractionDone && in.UserMessage != "" {
		return routeExtraction
	}
	return routeConversation
}
