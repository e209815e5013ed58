package audit

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/privascope-ai/privascope/internal/analysis"
	"github.com/privascope-ai/privascope/internal/completion"
	"github.com/privascope-ai/privascope/internal/redact"
)

// Meta identifies the upstream configuration the request ran against.
type Meta struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	RubricVersion string `json:"rubric_version"`
}

// ScreeningPayload records what the input screener saw, if it ran.
type ScreeningPayload struct {
	Mode    string             `json:"mode"`
	Scores  map[string]float32 `json:"scores,omitempty"`
	Flags   []string           `json:"flags,omitempty"`
	Warned  bool               `json:"warned"`
	Blocked bool               `json:"blocked"`
}

// RequestPayload describes the submitted policy text. The preview is
// controlled by logging.level and always passes through redaction.
type RequestPayload struct {
	PolicyChars int               `json:"policy_chars"`
	Preview     string            `json:"preview,omitempty"`
	Screening   *ScreeningPayload `json:"screening,omitempty"`
}

// ResultPayload describes how the analysis ended.
type ResultPayload struct {
	Outcome           string            `json:"outcome"`
	Severities        map[string]string `json:"severities,omitempty"`
	OverallRisk       string            `json:"overall_risk,omitempty"`
	OverallConsistent bool              `json:"overall_consistent"`
	Recovered         bool              `json:"recovered"`
	Error             string            `json:"error,omitempty"`
}

type UsagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type TimingMs struct {
	Screening float64 `json:"screening"`
	Upstream  float64 `json:"upstream"`
	Total     float64 `json:"total"`
}

// Event is the canonical audit payload, one per analysis request.
type Event struct {
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id"`
	Meta      Meta           `json:"meta"`
	Request   RequestPayload `json:"request"`
	Result    ResultPayload  `json:"result"`
	Usage     UsagePayload   `json:"usage"`
	TimingMs  TimingMs       `json:"timing_ms"`
}

// BuildParams collects inputs needed to assemble an audit event.
type BuildParams struct {
	RequestID         string
	PolicyText        string
	Provider          string
	Model             string
	RubricVersion     string
	LoggingLevel      string
	Outcome           string
	Summary           *analysis.Summary
	Recovered         bool
	OverallConsistent bool
	Usage             completion.Usage
	Screening         *ScreeningPayload
	Err               error
	ScreeningMs       float64
	UpstreamMs        float64
	TotalMs           float64
}

// BuildEvent assembles the canonical audit event for one request.
func BuildEvent(params BuildParams) *Event {
	ev := &Event{
		Version:   "1",
		Timestamp: time.Now().UTC(),
		RequestID: ensureRequestID(params.RequestID),
		Meta: Meta{
			Provider:      params.Provider,
			Model:         params.Model,
			RubricVersion: params.RubricVersion,
		},
		Request: RequestPayload{
			PolicyChars: utf8.RuneCountInString(params.PolicyText),
			Preview:     buildPreview(params.LoggingLevel, params.PolicyText),
			Screening:   params.Screening,
		},
		Result: ResultPayload{
			Outcome:           params.Outcome,
			Recovered:         params.Recovered,
			OverallConsistent: params.OverallConsistent,
		},
		Usage: UsagePayload{
			PromptTokens:     params.Usage.PromptTokens,
			CompletionTokens: params.Usage.CompletionTokens,
			TotalTokens:      params.Usage.TotalTokens,
		},
		TimingMs: TimingMs{
			Screening: params.ScreeningMs,
			Upstream:  params.UpstreamMs,
			Total:     params.TotalMs,
		},
	}

	if params.Summary != nil {
		ev.Result.Severities = map[string]string{
			analysis.CategoryDataCollecting: string(params.Summary.DataCollecting.Severity),
			analysis.CategoryDataSharing:    string(params.Summary.DataSharing.Severity),
			analysis.CategoryDataRetention:  string(params.Summary.DataRetention.Severity),
		}
		ev.Result.OverallRisk = string(params.Summary.OverallPrivacyRisk)
	}

	if params.Err != nil {
		ev.Result.Error = redact.String(params.Err.Error())
	}

	return ev
}

// LogEvent prints a redacted JSON representation of the audit event.
func LogEvent(ev *Event) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		redact.Logf("audit: failed to marshal event: %v", err)
		return
	}
	redact.Logf("audit: %s", string(data))
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	return NewRequestID()
}

// NewRequestID returns a random 32-char hex identifier.
func NewRequestID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

var (
	emailRegex = regexp.MustCompile(`(?i)[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	tokenRegex = regexp.MustCompile(`[A-Za-z0-9_\-]{20,}`)
)

// buildPreview returns the logged slice of the policy text for the
// configured logging level. Metadata level logs no text at all.
func buildPreview(level, policyText string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "full":
		return redact.String(truncate(policyText, 500))
	case "redacted":
		return redact.String(truncate(simpleRedact(policyText), 500))
	default:
		return ""
	}
}

func simpleRedact(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = tokenRegex.ReplaceAllString(s, "[REDACTED_TOKEN]")
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
