package screening

import (
	"context"
	"regexp"
	"strings"
)

var (
	promptInjectionRegex = regexp.MustCompile(
		`(?i)(ignore\s+previous\s+instructions|ignore\s+the\s+instructions\s+above|forget(\s+all)?\s+prev.*instructions|` +
			`you\s+are\s+no\s+longer\s+bound\s+by|bypass\s+safety|disregard\s+the\s+rubric)`,
	)
	jailbreakRegex = regexp.MustCompile(
		`(?i)(do\s+anything\s+now|jailbreak|uncensored|no\s+restrictions|no\s+safety\s+rules)`,
	)
	// Runs of four or more # collide with the delimiter the rubric wraps
	// submitted text in.
	delimiterAbuseRegex = regexp.MustCompile(`#{4,}`)
)

// Heuristic screens text with regex patterns. It needs no model assets
// and is the fallback when the classifier bundle is absent.
type Heuristic struct {
	mode string
}

func NewHeuristic(mode string) *Heuristic {
	return &Heuristic{mode: normalizeMode(mode)}
}

func (h *Heuristic) Status() Status {
	return Status{Enabled: true, Backend: "heuristic", Mode: h.mode}
}

func (h *Heuristic) Evaluate(_ context.Context, text string) (*Result, error) {
	res := &Result{
		Scores: make(map[string]float32),
	}

	lc := strings.ToLower(text)

	if promptInjectionRegex.MatchString(lc) {
		res.Scores["prompt_injection"] = 1.0
		res.Flags = append(res.Flags, "prompt_injection_high")
	}
	if jailbreakRegex.MatchString(lc) {
		res.Scores["jailbreak"] = 1.0
		res.Flags = append(res.Flags, "jailbreak_high")
	}
	if delimiterAbuseRegex.MatchString(text) {
		res.Scores["delimiter_abuse"] = 1.0
		res.Flags = append(res.Flags, "delimiter_abuse_medium")
	}

	if len(res.Scores) == 0 {
		res.Scores = nil
	}
	res.Warned = len(res.Flags) > 0
	res.Blocked = h.mode == ModeBlock && hasHighFlag(res.Flags)

	return res, nil
}

func hasHighFlag(flags []string) bool {
	for _, f := range flags {
		if strings.HasSuffix(f, "_high") {
			return true
		}
	}
	return false
}
