package telemetry

import (
	"testing"
)

func TestSafeAttributesFiltersSecrets(t *testing.T) {
	kvs := map[string]interface{}{
		"prompt":        "should drop",
		"content":       "drop",
		"policy_text":   "We collect everything",
		"details":       "drop",
		"api_key":       "sk-123",
		"token":         "abc",
		"safe_key":      "ok",
		"long_string":   string(make([]byte, 600)),
		"short_string":  "fine",
		"request_id":    "r1",
		"authorization": "secret",
	}

	attrs := SafeAttributes(kvs)
	for _, a := range attrs {
		switch a.Key {
		case "prompt", "content", "policy_text", "details", "api_key", "authorization", "token":
			t.Fatalf("unexpected unsafe attribute %s", a.Key)
		case "long_string":
			t.Fatalf("expected long string to be skipped")
		}
	}

	var sawSafe, sawRequestID bool
	for _, a := range attrs {
		if a.Key == "safe_key" {
			sawSafe = true
		}
		if a.Key == "request_id" {
			sawRequestID = true
		}
	}
	if !sawSafe || !sawRequestID {
		t.Fatalf("expected safe attributes to survive filtering")
	}
}
