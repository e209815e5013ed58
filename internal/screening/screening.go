package screening

import (
	"context"
	"strings"

	"github.com/privascope-ai/privascope/internal/config"
	"github.com/privascope-ai/privascope/internal/redact"
)

const (
	ModeObserve = "observe"
	ModeBlock   = "block"
)

// Screener inspects submitted policy text before it is sent upstream.
type Screener interface {
	Status() Status
	Evaluate(ctx context.Context, text string) (*Result, error)
}

// Status describes the active screening backend.
type Status struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"` // classifier | heuristic | off
	Mode    string `json:"mode,omitempty"`
}

// Result captures raw scores and derived flags for one text.
type Result struct {
	Scores  map[string]float32 `json:"scores,omitempty"`
	Flags   []string           `json:"flags,omitempty"`
	Warned  bool               `json:"warned"`
	Blocked bool               `json:"blocked"`
}

// NewFromConfig picks the strongest available backend: the ONNX
// classifier when a model dir is configured and loads, otherwise the
// regex heuristics. Disabled screening returns a no-op.
func NewFromConfig(cfg config.ScreeningConfig) Screener {
	if !cfg.Enabled {
		return noopScreener{}
	}
	mode := normalizeMode(cfg.Mode)
	if cfg.ModelDir != "" {
		c, err := LoadClassifier(cfg.ModelDir, cfg.SeqLen, cfg.WarnThreshold, cfg.BlockThreshold, mode)
		if err == nil {
			return c
		}
		redact.Logf("screening: classifier unavailable (%v), using heuristics", err)
	}
	return NewHeuristic(mode)
}

func normalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeBlock:
		return ModeBlock
	default:
		return ModeObserve
	}
}

type noopScreener struct{}

func (noopScreener) Status() Status {
	return Status{Enabled: false, Backend: "off"}
}

func (noopScreener) Evaluate(context.Context, string) (*Result, error) {
	return &Result{}, nil
}
