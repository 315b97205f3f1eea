package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fenwick/mira-agent/internal/agent"
	"github.com/fenwick/mira-agent/internal/llm"
	"github.com/fenwick/mira-agent/internal/tools"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

type stubLLM struct {
	content string
	err     error
}

func (s *stubLLM) Chat(ctx context.Context, model string, messages []llm.Message, toolDefs []map[string]any) (*llm.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: s.content}}, nil
}

func (s *stubLLM) Ping(ctx context.Context) error { return nil }

func testServer(t *testing.T, client llm.Client) *Server {
	t.Helper()
	registry := tools.NewRegistry(tools.Deps{}, nil)
	orch := agent.New(client, registry, "test-model", 0, nil)
	return NewServer("127.0.0.1:0", orch, NewAuthenticator(testSecret), nil)
}

func ownerToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "owner-1",
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func chatRequest(token string) *http.Request {
	req := httptest.NewRequest("POST", "/v1/assistant/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestChatSuccess(t *testing.T) {
	s := testServer(t, &stubLLM{content: "hello, owner"})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, chatRequest(ownerToken(t, testSecret)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var reply struct {
		Message     string           `json:"message"`
		ToolResults []map[string]any `json:"tool_results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Message != "hello, owner" {
		t.Errorf("message: %q", reply.Message)
	}
	if reply.ToolResults == nil {
		t.Error("tool_results must be present, even when empty")
	}
}

func TestChatMissingToken(t *testing.T) {
	s := testServer(t, &stubLLM{content: "x"})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, chatRequest(""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
	assertEnvelope(t, rec)
}

func TestChatWrongSecret(t *testing.T) {
	s := testServer(t, &stubLLM{content: "x"})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, chatRequest(ownerToken(t, "other-secret")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestChatRateLimited(t *testing.T) {
	s := testServer(t, &stubLLM{err: llm.ErrRateLimited})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, chatRequest(ownerToken(t, testSecret)))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status: %d", rec.Code)
	}
	assertEnvelope(t, rec)
}

func TestChatQuotaExhausted(t *testing.T) {
	s := testServer(t, &stubLLM{err: llm.ErrQuotaExhausted})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, chatRequest(ownerToken(t, testSecret)))

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status: %d", rec.Code)
	}
	assertEnvelope(t, rec)
}

func TestChatInternalError(t *testing.T) {
	s := testServer(t, &stubLLM{err: context.DeadlineExceeded})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, chatRequest(ownerToken(t, testSecret)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", rec.Code)
	}
	assertEnvelope(t, rec)
}

func TestChatEmptyMessages(t *testing.T) {
	s := testServer(t, &stubLLM{content: "x"})
	req := httptest.NewRequest("POST", "/v1/assistant/chat", strings.NewReader(`{"messages":[]}`))
	req.Header.Set("Authorization", "Bearer "+ownerToken(t, testSecret))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestHealthNoAuth(t *testing.T) {
	s := testServer(t, &stubLLM{content: "x"})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestVersionNoAuth(t *testing.T) {
	s := testServer(t, &stubLLM{content: "x"})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
}

// assertEnvelope checks the error body carries both the human-readable
// message and the machine detail.
func assertEnvelope(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("error body not JSON: %v", err)
	}
	if envelope.Message == "" || envelope.Error == "" {
		t.Errorf("incomplete envelope: %+v", envelope)
	}
}
