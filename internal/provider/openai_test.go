package provider

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/privascope-ai/privascope/internal/completion"
)

func newTestServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping: cannot open listener: %v", err)
	}
	srv := httptest.NewUnstartedServer(h)
	srv.Listener = ln
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func int64Ptr(v int64) *int64 { return &v }

func testRequest() *completion.Request {
	return &completion.Request{
		Model: "gpt-test",
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: "You are a privacy-policy risk assessor."},
			{Role: completion.RoleUser, Content: "####We collect emails.####"},
		},
		Temperature: 0,
		Seed:        int64Ptr(20240521),
	}
}

func TestOpenAIChatCompletion(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		if payload["model"] != "gpt-test" {
			t.Errorf("model = %v", payload["model"])
		}
		// Zero temperature must still be on the wire.
		if _, ok := payload["temperature"]; !ok {
			t.Errorf("temperature missing from payload")
		}
		if _, ok := payload["top_p"]; ok {
			t.Errorf("top_p should be omitted when unset")
		}
		if seed, ok := payload["seed"].(float64); !ok || int64(seed) != 20240521 {
			t.Errorf("seed = %v", payload["seed"])
		}
		msgs, ok := payload["messages"].([]any)
		if !ok || len(msgs) != 2 {
			t.Errorf("messages = %v", payload["messages"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index":0,"message":{"role":"assistant","content":"{\"overall_privacy_risk\":\"Low\"}"},"finish_reason":"stop"}],
			"usage": {"prompt_tokens": 11, "completion_tokens": 7, "total_tokens": 18}
		}`))
	}))

	p := NewOpenAI(srv.URL, "test-key", 5*time.Second, 0)
	resp, err := p.ChatCompletion(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if resp.Message.Role != "assistant" {
		t.Fatalf("role = %q", resp.Message.Role)
	}
	if !strings.Contains(resp.Message.Content, "overall_privacy_risk") {
		t.Fatalf("content = %q", resp.Message.Content)
	}
	if resp.Usage.TotalTokens != 18 {
		t.Fatalf("total tokens = %d, want 18", resp.Usage.TotalTokens)
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))

	p := NewOpenAI(srv.URL, "bad-key", 5*time.Second, 0)
	_, err := p.ChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatalf("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_request_error") {
		t.Fatalf("error should carry the upstream type: %v", err)
	}
}

func TestOpenAIResponseTooLarge(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + strings.Repeat("x", 256) + `"}}]}`))
	}))

	p := NewOpenAI(srv.URL, "test-key", 5*time.Second, 64)
	_, err := p.ChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatalf("expected error for oversized response")
	}
	if !strings.Contains(err.Error(), "exceeded limit") {
		t.Fatalf("error = %v", err)
	}
}

func TestOpenAINoChoices(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[],"usage":{"total_tokens":1}}`))
	}))

	p := NewOpenAI(srv.URL, "test-key", 5*time.Second, 0)
	_, err := p.ChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatalf("expected error for empty choices")
	}
	if !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("error = %v", err)
	}
}
