// ABOUTME: Per-conversation state: required fields, stored answers, pending
// ABOUTME: markers, and the append-only action log the testable properties are checked against.
package session

import (
	"time"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/formcontext"
)

// LogEntry is one append-only record of an action emitted during a turn,
// kept separate from ConversationHistory (which holds LLM-facing text) so
// ordering properties over emitted actions can be checked directly.
type LogEntry struct {
	Turn      int
	Kind      action.Kind
	FieldID   string
	ToolName  string
	Timestamp time.Time
}

// Session holds the durable state for one conversation.
type Session struct {
	ID string

	FormContextMD  string
	RequiredFields []string
	FieldTypes     map[string]formcontext.FieldType
	Fields         map[string]formcontext.Field

	Answers map[string]string

	ConversationHistory []Turn

	InitialExtractionDone bool

	PendingFieldID     string
	PendingActionType  action.Kind
	PendingTextValue   string
	PendingTextFieldID string
	PendingToolName    string

	ActionLog []LogEntry

	CreatedAt    time.Time
	LastAccessed time.Time

	turnCount int
}

// Turn is one entry of ConversationHistory.
type Turn struct {
	Role    string
	Content string
}

// Role constants matching llm.Role's three allowed values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

func newSession(id, formContextMD string, form *formcontext.Form) *Session {
	now := time.Now()
	return &Session{
		ID:                  id,
		FormContextMD:       formContextMD,
		RequiredFields:      append([]string(nil), form.RequiredFields...),
		FieldTypes:          copyFieldTypes(form.FieldTypes),
		Fields:              form.Fields,
		Answers:             make(map[string]string),
		ConversationHistory: nil,
		CreatedAt:           now,
		LastAccessed:        now,
	}
}

func copyFieldTypes(src map[string]formcontext.FieldType) map[string]formcontext.FieldType {
	dst := make(map[string]formcontext.FieldType, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MissingFields returns RequiredFields not yet present as a key in Answers,
// in the form's declared order.
func (s *Session) MissingFields() []string {
	missing := make([]string, 0, len(s.RequiredFields))
	for _, f := range s.RequiredFields {
		if _, ok := s.Answers[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// AnswersSnapshot returns a deep copy of Answers, used anywhere a value
// escapes the session (e.g. FORM_COMPLETE.data, the HTTP response body) so
// later mutation of the session never retroactively changes an emitted value.
func (s *Session) AnswersSnapshot() map[string]string {
	out := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		out[k] = v
	}
	return out
}

// AppendHistory appends one conversation turn.
func (s *Session) AppendHistory(role, content string) {
	s.ConversationHistory = append(s.ConversationHistory, Turn{Role: role, Content: content})
}

// LogAction appends an ActionLog entry for the action just emitted and
// advances the turn counter. Call once per turn, after the action is final.
func (s *Session) LogAction(a action.Action) {
	s.turnCount++
	s.ActionLog = append(s.ActionLog, LogEntry{
		Turn:      s.turnCount,
		Kind:      a.Kind,
		FieldID:   a.FieldID,
		ToolName:  a.ToolName,
		Timestamp: time.Now(),
	})
}

// FormFields returns the parsed field declarations (type, tool annotation,
// options) for every field named in the form, not just the required ones.
func (s *Session) FormFields() []formcontext.Field {
	out := make([]formcontext.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f)
	}
	return out
}

// ClearPending resets every pending_* field, step 3's "a MESSAGE or
// FORM_COMPLETE clears them" rule.
func (s *Session) ClearPending() {
	s.PendingFieldID = ""
	s.PendingActionType = ""
	s.PendingTextValue = ""
	s.PendingTextFieldID = ""
	s.PendingToolName = ""
}
