package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/privascope-ai/privascope/internal/analysis"
	"github.com/privascope-ai/privascope/internal/analyzer"
	"github.com/privascope-ai/privascope/internal/audit"
	"github.com/privascope-ai/privascope/internal/redact"
)

const (
	missingFieldMessage     = "Missing required field: policy_text"
	analysisFailureMessage  = "Error analyzing privacy policy"
	screeningBlockedMessage = "Submitted text was flagged by input screening"

	outcomeScreeningBlocked = "screening_blocked"
)

type analyzeRequest struct {
	PolicyText string `json:"policy_text"`
}

type successResponse struct {
	Status  string           `json:"status"`
	Summary analysis.Summary `json:"summary"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// handleAnalyze runs one policy text through screening and the analysis
// pipeline. Every exit path lands an audit event and request metrics.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = audit.NewRequestID()
	}
	w.Header().Set("X-Request-Id", requestID)

	start := time.Now()
	ctx := r.Context()
	ctx, root := s.startSpan(ctx, "privascope.request", trace.SpanKindServer, map[string]interface{}{
		"http.method":                  r.Method,
		"http.route":                   "/v1/analyze",
		"privascope.screening.enabled": s.screener.Status().Enabled,
		"privascope.screening.backend": s.screener.Status().Backend,
	})
	defer root.End()

	if s.auth.Enabled() {
		_, authSpan := s.startSpan(ctx, "privascope.auth", trace.SpanKindInternal, nil)
		token, _ := parseBearerToken(r.Header.Get("Authorization"))
		setSpanAttrs(authSpan, map[string]interface{}{
			"privascope.auth.key_present": token != "",
		})
		if !s.auth.Allow(token) {
			setSpanAttrs(authSpan, map[string]interface{}{"privascope.auth.result": "denied"})
			authSpan.End()
			writeError(w, http.StatusUnauthorized, "Invalid or missing API key", "")
			return
		}
		setSpanAttrs(authSpan, map[string]interface{}{"privascope.auth.result": "ok"})
		authSpan.End()
	}

	var reqBody analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
			return
		}
		// A body that doesn't parse carries no policy_text; callers see
		// the same validation error either way.
		reqBody.PolicyText = ""
	}

	var (
		screeningMs float64
		scrPayload  *audit.ScreeningPayload
	)

	finish := func(outcome string, report *analyzer.Report, analyzeErr error) {
		params := audit.BuildParams{
			RequestID:     requestID,
			PolicyText:    reqBody.PolicyText,
			Provider:      s.cfg.Provider.Type,
			Model:         s.analyzer.Model(),
			RubricVersion: s.analyzer.Rubric().Version,
			LoggingLevel:  s.loggingLevel,
			Outcome:       outcome,
			Screening:     scrPayload,
			Err:           analyzeErr,
			ScreeningMs:   screeningMs,
			TotalMs:       float64(time.Since(start)) / float64(time.Millisecond),
		}
		if report != nil {
			params.Summary = &report.Summary
			params.Recovered = report.Recovered
			params.OverallConsistent = report.OverallConsistent
			params.Usage = report.Usage
			params.UpstreamMs = float64(report.Upstream) / float64(time.Millisecond)
		}
		setSpanAttrs(root, map[string]interface{}{
			"privascope.outcome":        outcome,
			"privascope.provider_type":  s.cfg.Provider.Type,
			"privascope.rubric_version": s.analyzer.Rubric().Version,
			"privascope.recovered":      params.Recovered,
			"privascope.input_chars":    len(reqBody.PolicyText),
		})
		if scrPayload != nil {
			setSpanAttrs(root, map[string]interface{}{
				"privascope.screening.mode":    scrPayload.Mode,
				"privascope.screening.flags":   scrPayload.Flags,
				"privascope.screening.blocked": scrPayload.Blocked,
			})
		}
		s.audit.Emit(ctx, audit.BuildEvent(params))
		s.telemetry.RecordRequestMetrics(outcome, s.cfg.Provider.Type, s.analyzer.Rubric().Version,
			params.TotalMs, params.UpstreamMs, screeningMs, params.Recovered)
	}

	if strings.TrimSpace(reqBody.PolicyText) == "" {
		finish(string(analyzer.OutcomeEmptyInput), nil, nil)
		writeError(w, http.StatusBadRequest, missingFieldMessage, "")
		return
	}

	if status := s.screener.Status(); status.Enabled {
		scrStart := time.Now()
		res, err := s.screener.Evaluate(ctx, reqBody.PolicyText)
		screeningMs = float64(time.Since(scrStart)) / float64(time.Millisecond)
		if err != nil {
			// Screening is advisory; an evaluator failure never takes
			// down the analysis itself.
			redact.Logf("screening evaluate failed: %v", err)
		} else {
			scrPayload = &audit.ScreeningPayload{
				Mode:    status.Mode,
				Scores:  res.Scores,
				Flags:   res.Flags,
				Warned:  res.Warned,
				Blocked: res.Blocked,
			}
			if res.Blocked {
				finish(outcomeScreeningBlocked, nil, nil)
				writeError(w, http.StatusUnprocessableEntity, screeningBlockedMessage, strings.Join(res.Flags, ", "))
				return
			}
		}
	}

	report, err := s.analyzer.Analyze(ctx, reqBody.PolicyText)
	if err != nil {
		outcome := analyzer.ClassifyError(err)
		finish(string(outcome), nil, err)
		switch outcome {
		case analyzer.OutcomeEmptyInput:
			writeError(w, http.StatusBadRequest, missingFieldMessage, "")
		case analyzer.OutcomeUpstreamFailure, analyzer.OutcomeMalformedReply:
			writeError(w, http.StatusBadGateway, analysisFailureMessage, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, analysisFailureMessage, err.Error())
		}
		return
	}

	finish(string(analyzer.OutcomeOK), report, nil)
	writeJSON(w, http.StatusOK, successResponse{Status: "success", Summary: report.Summary})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		redact.Logf("failed to write response: %v", err)
	}
}

// writeError emits the error envelope. The detail string passes through
// redaction because provider errors can echo URLs and keys.
func writeError(w http.ResponseWriter, status int, message, detail string) {
	body := errorResponse{Status: "error", Message: message}
	if detail != "" {
		body.Error = redact.String(detail)
	}
	writeJSON(w, status, body)
}
