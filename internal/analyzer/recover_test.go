package analyzer

import (
	"errors"
	"testing"
)

func TestRecoverObjectStrict(t *testing.T) {
	obj, recovered, err := RecoverObject(`{"overall_privacy_risk":"Low"}`)
	if err != nil {
		t.Fatalf("RecoverObject: %v", err)
	}
	if recovered {
		t.Fatalf("strict parse must not be marked recovered")
	}
	if obj["overall_privacy_risk"] != "Low" {
		t.Fatalf("obj = %v", obj)
	}
}

func TestRecoverObjectFromProse(t *testing.T) {
	raw := "Here is the assessment you asked for:\n\n```json\n" +
		`{"data_collecting":{"details":"Email","severity":"High"},"overall_privacy_risk":"Medium"}` +
		"\n```\n\nLet me know if you need anything else!"

	obj, recovered, err := RecoverObject(raw)
	if err != nil {
		t.Fatalf("RecoverObject: %v", err)
	}
	if !recovered {
		t.Fatalf("expected the extraction path")
	}
	if obj["overall_privacy_risk"] != "Medium" {
		t.Fatalf("obj = %v", obj)
	}
	inner, ok := obj["data_collecting"].(map[string]any)
	if !ok || inner["severity"] != "High" {
		t.Fatalf("nested category lost: %v", obj)
	}
}

func TestRecoverObjectBracesInsideStrings(t *testing.T) {
	raw := `The result: {"data_sharing":{"details":"Uses markers like { and } in text, even \"quoted\" ones","severity":"Low"}} done.`

	obj, recovered, err := RecoverObject(raw)
	if err != nil {
		t.Fatalf("RecoverObject: %v", err)
	}
	if !recovered {
		t.Fatalf("expected the extraction path")
	}
	inner, ok := obj["data_sharing"].(map[string]any)
	if !ok {
		t.Fatalf("obj = %v", obj)
	}
	if inner["severity"] != "Low" {
		t.Fatalf("inner = %v", inner)
	}
}

func TestRecoverObjectSkipsUnparseableCandidates(t *testing.T) {
	raw := `prefix {not json at all} middle {"overall_privacy_risk":"High"} suffix`

	obj, recovered, err := RecoverObject(raw)
	if err != nil {
		t.Fatalf("RecoverObject: %v", err)
	}
	if !recovered {
		t.Fatalf("expected the extraction path")
	}
	if obj["overall_privacy_risk"] != "High" {
		t.Fatalf("obj = %v", obj)
	}
}

func TestRecoverObjectTrailingGarbage(t *testing.T) {
	obj, recovered, err := RecoverObject(`{"overall_privacy_risk":"Low"}}`)
	if err != nil {
		t.Fatalf("RecoverObject: %v", err)
	}
	if !recovered {
		t.Fatalf("trailing brace should force the extraction path")
	}
	if obj["overall_privacy_risk"] != "Low" {
		t.Fatalf("obj = %v", obj)
	}
}

func TestRecoverObjectNullReply(t *testing.T) {
	// "null" is valid JSON and strict-parses to a nil map. Normalization
	// turns that into an all-defaults summary downstream.
	obj, recovered, err := RecoverObject("null")
	if err != nil {
		t.Fatalf("RecoverObject: %v", err)
	}
	if recovered {
		t.Fatalf("null is a strict parse, not a recovery")
	}
	if obj != nil {
		t.Fatalf("obj = %v, want nil", obj)
	}
}

func TestRecoverObjectNoObject(t *testing.T) {
	for _, raw := range []string{
		"I cannot analyze this policy.",
		"",
		"[1,2,3]",
		"{ unbalanced",
	} {
		_, _, err := RecoverObject(raw)
		if !errors.Is(err, ErrMalformedReply) {
			t.Errorf("RecoverObject(%q) err = %v, want ErrMalformedReply", raw, err)
		}
	}
}
