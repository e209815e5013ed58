package mockprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestMockProviderChatCompletions(t *testing.T) {
	shutdown, baseURL, err := StartMockProvider("127.0.0.1:0")
	if err != nil {
		t.Skipf("start mock provider: %v", err)
	}
	defer shutdown(context.Background())

	payload := []byte(`{"model":"mock-analyzer","messages":[{"role":"user","content":"####policy####"}]}`)
	resp, err := http.Post(baseURL+"/v1/chat/completions", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post mock provider: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		ID      string `json:"id"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Role    string `json:"role"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ID == "" {
		t.Fatalf("expected non-empty id")
	}
	if len(body.Choices) == 0 {
		t.Fatalf("expected at least one choice")
	}

	var summary map[string]any
	if err := json.Unmarshal([]byte(body.Choices[0].Message.Content), &summary); err != nil {
		t.Fatalf("reply content is not a JSON assessment: %v", err)
	}
	if _, ok := summary["overall_privacy_risk"]; !ok {
		t.Fatalf("reply missing overall_privacy_risk: %s", body.Choices[0].Message.Content)
	}
}

func TestMockProviderGenerateContent(t *testing.T) {
	shutdown, baseURL, err := StartMockProvider("127.0.0.1:0")
	if err != nil {
		t.Skipf("start mock provider: %v", err)
	}
	defer shutdown(context.Background())

	payload := []byte(`{"contents":[{"role":"user","parts":[{"text":"####policy####"}]}]}`)
	resp, err := http.Post(baseURL+"/v1beta/models/mock-analyzer:generateContent", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post mock provider: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		t.Fatalf("expected a candidate with parts")
	}

	var summary map[string]any
	if err := json.Unmarshal([]byte(body.Candidates[0].Content.Parts[0].Text), &summary); err != nil {
		t.Fatalf("part text is not a JSON assessment: %v", err)
	}
	if _, ok := summary["data_retention"]; !ok {
		t.Fatalf("reply missing data_retention: %s", body.Candidates[0].Content.Parts[0].Text)
	}
}
