// Package analyzer sequences the analysis pipeline: validate the input,
// build the rubric-bound prompt, call the completion service, recover a
// structured result from the reply, normalize it. Failures map onto a small
// outcome taxonomy; nothing is retried and nothing is swallowed.
package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/privascope-ai/privascope/internal/analysis"
	"github.com/privascope-ai/privascope/internal/completion"
	"github.com/privascope-ai/privascope/internal/provider"
	"github.com/privascope-ai/privascope/internal/rubric"
)

// Analyzer runs the request-to-summary pipeline. One Analyzer is shared
// across concurrent requests; it holds no per-request state.
type Analyzer struct {
	provider provider.Provider
	rubric   rubric.Rubric
	model    string
}

// New builds an Analyzer. The completion provider is an injected dependency;
// credential sourcing happens entirely in the caller's config layer.
func New(p provider.Provider, r rubric.Rubric, model string) *Analyzer {
	return &Analyzer{
		provider: p,
		rubric:   r,
		model:    model,
	}
}

// Report is the full result of one analysis, including the observability
// fields the transport and audit layers consume.
type Report struct {
	Summary analysis.Summary
	// RawReply is the unparsed model output.
	RawReply string
	// Recovered is true when the object was extracted from prose wrapping
	// rather than parsed strictly.
	Recovered bool
	// OverallConsistent is false when the model's stated overall risk
	// disagrees with the rubric aggregation of its own category severities.
	// The stated value is kept either way.
	OverallConsistent bool
	Usage             completion.Usage
	Upstream          time.Duration
}

// Analyze runs one policy text through the pipeline. The completion call is
// the sole blocking stage; its context governs cancellation. The pipeline
// itself imposes no timeout beyond the provider's transport settings.
func (a *Analyzer) Analyze(ctx context.Context, policyText string) (*Report, error) {
	if strings.TrimSpace(policyText) == "" {
		return nil, ErrEmptyPolicyText
	}

	req := &completion.Request{
		Model:       a.model,
		Messages:    a.rubric.Build(policyText),
		Temperature: a.rubric.Sampling.Temperature,
		TopP:        a.rubric.Sampling.TopP,
		Seed:        a.rubric.Sampling.Seed,
	}

	start := time.Now()
	resp, err := a.provider.ChatCompletion(ctx, req)
	upstream := time.Since(start)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	if resp == nil {
		return nil, &UpstreamError{Err: errors.New("provider returned no response")}
	}

	obj, recovered, err := RecoverObject(resp.Message.Content)
	if err != nil {
		return nil, err
	}

	summary := NormalizeSummary(obj)

	return &Report{
		Summary:           summary,
		RawReply:          resp.Message.Content,
		Recovered:         recovered,
		OverallConsistent: summary.Consistent(),
		Usage:             resp.Usage,
		Upstream:          upstream,
	}, nil
}

// Rubric returns the configured rubric, for audit metadata.
func (a *Analyzer) Rubric() rubric.Rubric { return a.rubric }

// Model returns the configured model identifier.
func (a *Analyzer) Model() string { return a.model }
