package redact

import (
	"strings"
	"testing"
)

func TestStringRedaction(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		disallow []string
		require  []string
	}{
		{
			name:     "bearer header",
			input:    "Authorization: Bearer sk-secret-123",
			disallow: []string{"sk-secret-123"},
			require:  []string{"[REDACTED]"},
		},
		{
			name:     "api keys slice",
			input:    "api_keys=[svc-key-1 svc-key-2]",
			disallow: []string{"svc-key-1", "svc-key-2"},
			require:  []string{"api_keys=[REDACTED]"},
		},
		{
			name:     "gemini header",
			input:    "x-goog-api-key: AIzaSyFakeKey123",
			disallow: []string{"AIzaSyFakeKey123"},
			require:  []string{"[REDACTED]"},
		},
		{
			name:     "provider error url",
			input:    "call openai: Post https://api.openai.com/v1/chat/completions?key=abc123: timeout",
			disallow: []string{"chat/completions?key=abc123"},
			require:  []string{"https://api.openai.com/completions"},
		},
		{
			name:     "mixed token",
			input:    "Bearer abc key=supersecret token=anotherone base_url=https://llm.example.test/models/base/",
			disallow: []string{"abc", "supersecret", "anotherone", "models/base/"},
			require:  []string{"[REDACTED]", "https://llm.example.test/[REDACTED_PATH]"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := String(tc.input)
			for _, bad := range tc.disallow {
				if bad != "" && contains(out, bad) {
					t.Fatalf("output still contains %q: %s", bad, out)
				}
			}
			for _, want := range tc.require {
				if want == "" {
					continue
				}
				if !contains(out, want) {
					t.Fatalf("output missing required substring %q: %s", want, out)
				}
			}
		})
	}
}

func contains(s, sub string) bool {
	return s != "" && sub != "" && strings.Contains(s, sub)
}
