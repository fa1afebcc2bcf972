package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formpilot/formpilot-ai/llm"
	"github.com/formpilot/formpilot-ai/orchestrator"
	"github.com/formpilot/formpilot-ai/session"
)

type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Complete(_ context.Context, _ string, _ []llm.Message) (llm.Response, error) {
	if f.calls >= len(f.responses) {
		return llm.Response{Text: `{"action":"MESSAGE","text":"ok"}`}, nil
	}
	text := f.responses[f.calls]
	f.calls++
	return llm.Response{Text: text}, nil
}

const testForm = `# Annual Leave Request

## Fields
- leave_type (dropdown, required): options: Annual, Sick, Unpaid
- start_date (date, required)
`

func newTestServer() *Server {
	store := session.NewStore(0)
	driver := orchestrator.NewDriver(&fakeLLM{})
	return NewServer(store, driver, Config{})
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_createsNewSessionAndGreets(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/chat", map[string]any{
		"form_context_md": testForm,
		"user_message":    "",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatalf("expected a generated conversation_id")
	}
}

func TestHandleChat_emptyFormContextIs400(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/chat", map[string]any{"form_context_md": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleChat_unknownConversationIDIs404(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/chat", map[string]any{
		"form_context_md": testForm,
		"conversation_id": "does-not-exist",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleChat_malformedBodyIs422(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleChat_reusesExistingSession(t *testing.T) {
	s := newTestServer()
	first := postJSON(t, s, "/api/chat", map[string]any{"form_context_md": testForm})
	var firstResp chatResponse
	json.Unmarshal(first.Body.Bytes(), &firstResp)

	second := postJSON(t, s, "/api/chat", map[string]any{
		"form_context_md": testForm,
		"conversation_id": firstResp.ConversationID,
		"user_message":    "hello",
	})
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", second.Code, second.Body.String())
	}
	var secondResp chatResponse
	json.Unmarshal(second.Body.Bytes(), &secondResp)
	if secondResp.ConversationID != firstResp.ConversationID {
		t.Fatalf("conversation_id changed: %q -> %q", firstResp.ConversationID, secondResp.ConversationID)
	}
}

func TestHandleResetSession_deletesAndReturnsSuccess(t *testing.T) {
	s := newTestServer()
	create := postJSON(t, s, "/api/chat", map[string]any{"form_context_md": testForm})
	var created chatResponse
	json.Unmarshal(create.Body.Bytes(), &created)

	rec := postJSON(t, s, "/api/sessions/reset", map[string]any{"conversation_id": created.ConversationID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp resetResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success {
		t.Fatalf("expected success=true")
	}

	if _, err := s.Store.Get(created.ConversationID); err == nil {
		t.Fatalf("expected session to be gone after reset")
	}
}

func TestHandleResetSession_unknownIDIs404(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/sessions/reset", map[string]any{"conversation_id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleHealth_reportsActiveSessionCount(t *testing.T) {
	s := newTestServer()
	postJSON(t, s, "/api/chat", map[string]any{"form_context_md": testForm})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp healthResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "ok" || resp.ActiveSessions != 1 {
		t.Fatalf("got %+v", resp)
	}
}
