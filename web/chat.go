// ABOUTME: POST /api/chat: the HTTP adapter over orchestrator.Driver and session.Store.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formpilot/formpilot-ai/orchestrator"
	"github.com/formpilot/formpilot-ai/session"
)

type chatToolResult struct {
	ToolName string          `json:"tool_name"`
	ToolArgs map[string]any  `json:"tool_args,omitempty"`
	Result   json.RawMessage `json:"result"`
}

type chatRequest struct {
	FormContextMD  string           `json:"form_context_md"`
	UserMessage    string           `json:"user_message"`
	ConversationID string           `json:"conversation_id,omitempty"`
	ToolResults    []chatToolResult `json:"tool_results,omitempty"`
}

type chatResponse struct {
	Action         any               `json:"action"`
	ConversationID string            `json:"conversation_id"`
	Answers        map[string]string `json:"answers"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if req.FormContextMD == "" {
		writeJSONError(w, http.StatusBadRequest, "form_context_md must not be empty")
		return
	}

	sess, err := s.lookupOrCreateSession(req)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	unlock, err := s.Store.Lock(sess.ID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "unknown session")
		return
	}
	defer unlock()

	in := orchestrator.Input{
		UserMessage: req.UserMessage,
		ToolResults: toOrchestratorToolResults(req.ToolResults),
	}

	out, err := s.Driver.Run(r.Context(), sess, in)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "LLM layer failure after all retries")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Action:         out.Action,
		ConversationID: sess.ID,
		Answers:        out.Answers,
	})
}

// lookupOrCreateSession returns the session named by ConversationID, or
// creates a new one if none was supplied. An explicit but unknown
// conversation_id is a 404, not a silent re-creation.
func (s *Server) lookupOrCreateSession(req chatRequest) (*session.Session, error) {
	if req.ConversationID == "" {
		return s.Store.Create(req.FormContextMD, "")
	}
	sess, err := s.Store.Get(req.ConversationID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, errors.New("unknown conversation_id")
	}
	return sess, err
}

func toOrchestratorToolResults(in []chatToolResult) []orchestrator.ToolResult {
	out := make([]orchestrator.ToolResult, 0, len(in))
	for _, tr := range in {
		out = append(out, orchestrator.ToolResult{
			ToolName: tr.ToolName,
			ToolArgs: tr.ToolArgs,
			Result:   []byte(tr.Result),
		})
	}
	return out
}

type resetRequest struct {
	ConversationID string `json:"conversation_id"`
}

type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	if err := s.Store.Delete(req.ConversationID); err != nil {
		writeJSON(w, http.StatusNotFound, resetResponse{Success: false, Message: "unknown session"})
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Success: true, Message: "session reset"})
}

type healthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		ActiveSessions: s.Store.Len(),
	})
}
