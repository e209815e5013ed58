package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestGeminiChatCompletion(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gpt-test:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			SystemInstruction *struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"system_instruction"`
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				ResponseMimeType string `json:"responseMimeType"`
				Seed             *int64 `json:"seed"`
			} `json:"generationConfig"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		if payload.SystemInstruction == nil || len(payload.SystemInstruction.Parts) == 0 {
			t.Errorf("system_instruction missing")
		}
		if len(payload.Contents) != 1 || payload.Contents[0].Role != "user" {
			t.Errorf("contents = %+v", payload.Contents)
		}
		if payload.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("responseMimeType = %q", payload.GenerationConfig.ResponseMimeType)
		}
		if payload.GenerationConfig.Seed == nil || *payload.GenerationConfig.Seed != 20240521 {
			t.Errorf("seed = %v", payload.GenerationConfig.Seed)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content":{"role":"model","parts":[{"text":"{\"overall_privacy_risk\":\"Medium\"}"}]},"finishReason":"STOP"}],
			"usageMetadata": {"promptTokenCount": 11, "candidatesTokenCount": 7, "totalTokenCount": 18}
		}`))
	}))

	p := NewGemini(srv.URL, "test-key", 5*time.Second, 0)
	resp, err := p.ChatCompletion(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if resp.Message.Role != "assistant" {
		t.Fatalf("role = %q, want assistant", resp.Message.Role)
	}
	if !strings.Contains(resp.Message.Content, "Medium") {
		t.Fatalf("content = %q", resp.Message.Content)
	}
	if resp.Usage.PromptTokens != 11 || resp.Usage.CompletionTokens != 7 || resp.Usage.TotalTokens != 18 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
}

func TestGeminiErrorStatus(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))

	p := NewGemini(srv.URL, "bad-key", 5*time.Second, 0)
	_, err := p.ChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatalf("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Fatalf("error should carry the upstream status: %v", err)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))

	p := NewGemini(srv.URL, "test-key", 5*time.Second, 0)
	_, err := p.ChatCompletion(context.Background(), testRequest())
	if err == nil {
		t.Fatalf("expected error for empty candidates")
	}
	if !strings.Contains(err.Error(), "no candidates") {
		t.Fatalf("error = %v", err)
	}
}
