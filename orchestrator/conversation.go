// ABOUTME: Conversation node: one LLM exchange plus the bounded output-guard retry loop.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/guard"
	"github.com/formpilot/formpilot-ai/llm"
	"github.com/formpilot/formpilot-ai/prompt"
	"github.com/formpilot/formpilot-ai/session"
)

// runConversationWithGuards builds the conversation prompt, calls the LLM,
// and applies output guards with corrective retries over a *local* copy of
// history — a failed retry never pollutes the session's persisted history
//. On final failure it returns the fallback MESSAGE.
func (d *Driver) runConversationWithGuards(ctx context.Context, s *session.Session) action.Action {
	systemPrompt := d.buildConversationPrompt(s)
	localHistory := append([]llm.Message(nil), toLLMHistory(s.ConversationHistory)...)

	guardCtx := d.guardContext(s)

	maxRetries := d.MaxGuardRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		callStart := d.clock()
		resp, err := d.LLM.Complete(ctx, systemPrompt, localHistory)
		if d.Metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			d.Metrics.RecordLLMCall(string(NodeConversation), status, d.clock().Sub(callStart), resp.InputTokens, resp.OutputTokens)
		}
		if err != nil {
			d.emit(NodeConversation, s.ID, "LLM transport error, falling back")
			if d.Metrics != nil {
				d.Metrics.RecordGuardFallback()
			}
			return guard.Fallback()
		}

		result := guard.Evaluate(resp.Text, guardCtx)
		if result.OK {
			return result.Action
		}

		d.emit(NodeConversation, s.ID, "guard correction: "+result.Corrective)
		if d.Metrics != nil {
			d.Metrics.RecordGuardRetry(guardReasonFor(result.Corrective))
		}
		localHistory = append(localHistory,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Text},
			llm.Message{Role: llm.RoleSystem, Content: result.Corrective},
		)
	}

	if d.Metrics != nil {
		d.Metrics.RecordGuardFallback()
	}
	return guard.Fallback()
}

// guardReasonFor classifies a corrective message back to the guard that
// produced it, for metrics labeling. guard.Result does not carry a reason
// code of its own, so this matches on the fixed corrective-message shapes.
func guardReasonFor(corrective string) string {
	switch {
	case corrective == "Respond with ONLY the JSON object — no prose, no fences.":
		return "unparseable"
	case strings.Contains(corrective, "only allowed values are"):
		return "unknown_kind"
	case strings.Contains(corrective, "already answered with"):
		return "reask"
	case strings.Contains(corrective, "not MESSAGE"):
		return "message_while_missing"
	case strings.Contains(corrective, "empty options"):
		return "empty_dropdown"
	case strings.Contains(corrective, "still missing"):
		return "premature_completion"
	default:
		return "unknown"
	}
}

func (d *Driver) buildConversationPrompt(s *session.Session) string {
	missing := s.MissingFields()
	hint := prompt.NextStepHint{}
	if len(missing) > 0 {
		hint.FieldID = missing[0]
		if tool, ok := toolForField(s, missing[0]); ok {
			hint.RequiresTool = true
			hint.ToolName = tool
		}
	}

	return prompt.Conversation(s.FormContextMD, prompt.State{
		Answers:       s.AnswersSnapshot(),
		MissingFields: missing,
		Hint:          hint,
	})
}

func (d *Driver) guardContext(s *session.Session) guard.Context {
	missing := s.MissingFields()
	next := ""
	if len(missing) > 0 {
		next = missing[0]
	}
	return guard.Context{
		Answers:       s.AnswersSnapshot(),
		MissingFields: missing,
		NextField:     next,
		ToolForField:  toolForFieldMap(s),
	}
}

func toLLMHistory(turns []session.Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.Message{Role: llm.Role(t.Role), Content: t.Content})
	}
	return out
}

// toolForField and toolForFieldMap resolve the form-declared tool
// annotation for a field, used for the empty-dropdown guard's message and
// the prompt's next-step hint.
func toolForFieldMap(s *session.Session) map[string]string {
	out := make(map[string]string)
	for _, f := range s.FormFields() {
		if f.Tool != "" {
			out[f.ID] = f.Tool
		}
	}
	return out
}

func toolForField(s *session.Session, fieldID string) (string, bool) {
	tool, ok := toolForFieldMap(s)[fieldID]
	return tool, ok
}
