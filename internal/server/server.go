// Package server is the HTTP front end: one analysis endpoint plus
// health and readiness probes. Handlers translate pipeline outcomes
// into the wire contract and feed the audit emitter on every exit path.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/privascope-ai/privascope/internal/analyzer"
	"github.com/privascope-ai/privascope/internal/audit"
	"github.com/privascope-ai/privascope/internal/auth"
	"github.com/privascope-ai/privascope/internal/config"
	"github.com/privascope-ai/privascope/internal/provider"
	"github.com/privascope-ai/privascope/internal/redact"
	"github.com/privascope-ai/privascope/internal/rubric"
	"github.com/privascope-ai/privascope/internal/screening"
	"github.com/privascope-ai/privascope/internal/telemetry"
)

// Server wraps the HTTP components for Privascope.
type Server struct {
	mux          *http.ServeMux
	cfg          *config.Config
	auth         *auth.Keyring
	analyzer     *analyzer.Analyzer
	screener     screening.Screener
	audit        *audit.Emitter
	telemetry    *telemetry.Provider
	loggingLevel string
	httpSrv      *http.Server
}

// New builds a Server from the loaded config: completion provider,
// rubric, screener, keyring and audit emitter.
func New(cfg *config.Config, tel *telemetry.Provider) (*Server, error) {
	keyring, err := auth.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	prov, err := buildProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	rb, err := rubric.ForVersion(cfg.Analysis.RubricVersion)
	if err != nil {
		return nil, err
	}

	emitter, err := audit.NewFromConfig(cfg.Audit)
	if err != nil {
		return nil, err
	}

	s := &Server{
		mux:          http.NewServeMux(),
		cfg:          cfg,
		auth:         keyring,
		analyzer:     analyzer.New(prov, rb, cfg.Analysis.Model),
		screener:     screening.NewFromConfig(cfg.Screening),
		audit:        emitter,
		telemetry:    tel,
		loggingLevel: strings.ToLower(strings.TrimSpace(cfg.Logging.Level)),
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
	s.mux.Handle("/v1/analyze", s.withCORS(http.HandlerFunc(s.handleAnalyze)))

	s.httpSrv = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s, nil
}

func buildProvider(p config.ProviderConfig) (provider.Provider, error) {
	timeout := time.Duration(p.TimeoutSeconds) * time.Second
	typ := strings.ToLower(strings.TrimSpace(p.Type))
	switch typ {
	case "openai", "gemini":
		key := p.ResolveAPIKey()
		if key == "" {
			return nil, fmt.Errorf("provider %s: api key resolved empty (env %q unset and no inline api_key)", typ, p.APIKeyEnv)
		}
		if typ == "gemini" {
			return provider.NewGemini(p.BaseURL, key, timeout, p.MaxResponseBytes), nil
		}
		return provider.NewOpenAI(p.BaseURL, key, timeout, p.MaxResponseBytes), nil
	case "static":
		return provider.NewStatic(p.StaticReply), nil
	default:
		return nil, fmt.Errorf("unsupported provider type %q", p.Type)
	}
}

// Start begins serving on the configured address. It blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	redact.Logf("privascope listening on %s (provider=%s model=%s rubric=%s)",
		s.cfg.Server.Addr, s.cfg.Provider.Type, s.cfg.Analysis.Model, s.analyzer.Rubric().Version)
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the listener and drains the audit queue.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)
	s.audit.Close(ctx)
	return err
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

// handleReady reports 503 while a required screening classifier is
// unavailable, so deployments that insist on ML screening don't take
// traffic on the heuristic fallback.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	scr := s.cfg.Screening
	if scr.Enabled && scr.RequireClassifier && s.screener.Status().Backend != "classifier" {
		http.Error(w, "screening classifier not loaded", http.StatusServiceUnavailable)
		return
	}
	fmt.Fprintln(w, "ok")
}

// parseBearerToken extracts the token from an Authorization header.
func parseBearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", false
	}
	return fields[1], true
}
