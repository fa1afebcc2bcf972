// ABOUTME: Extraction node: runs at most once per session, on the first substantive user message.
package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/internal/dateparse"
	"github.com/formpilot/formpilot-ai/internal/jsonutil"
	"github.com/formpilot/formpilot-ai/llm"
	"github.com/formpilot/formpilot-ai/prompt"
	"github.com/formpilot/formpilot-ai/session"
)

// multiAnswerResponse is the common-case extraction shape.
type multiAnswerResponse struct {
	Intent  string            `json:"intent"`
	Answers map[string]string `json:"answers"`
	Message string            `json:"message"`
}

// runExtraction returns (direct, false) if the LLM pre-empted the turn with
// a direct action object, or (nil, true) if extraction filled every required
// field, or (nil, false) to route on to conversation.
func (d *Driver) runExtraction(ctx context.Context, s *session.Session, userMessage string) (direct *action.Action, formComplete bool) {
	systemPrompt := prompt.Extraction(s.FieldTypes)

	callStart := d.clock()
	resp, err := d.LLM.Complete(ctx, systemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: userMessage},
	})
	if d.Metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		d.Metrics.RecordLLMCall(string(NodeExtraction), status, d.clock().Sub(callStart), resp.InputTokens, resp.OutputTokens)
	}
	s.InitialExtractionDone = true
	if err != nil {
		// : an LLM transport error at extraction marks initial_extraction_done
		// true and proceeds — extraction never fails the turn.
		return nil, false
	}

	raw, err := jsonutil.ExtractObject(resp.Text)
	if err != nil {
		return nil, false
	}

	if jsonutil.StringAt(raw, "intent") != "multi_answer" {
		// Any direct action object pre-empts the turn.
		var a action.Action
		if err := json.Unmarshal(raw, &a); err == nil && a.Kind.Valid() {
			return &a, false
		}
		return nil, false
	}

	var parsed multiAnswerResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false
	}

	now := d.clock()
	for fieldID, value := range parsed.Answers {
		fieldType, known := s.FieldTypes[fieldID]
		if !known {
			continue
		}
		switch fieldType {
		case "date":
			if normalized, err := dateparse.Date(value, now); err == nil {
				s.Answers[fieldID] = normalized
			}
		case "datetime":
			if normalized, err := dateparse.Datetime(value, now); err == nil {
				s.Answers[fieldID] = normalized
			}
		default:
			s.Answers[fieldID] = value
		}
	}

	return nil, len(s.MissingFields()) == 0
}

func (d *Driver) clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
