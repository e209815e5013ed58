package provider

import (
	"context"

	"github.com/privascope-ai/privascope/internal/completion"
)

// Provider is the interface for all upstream completion services.
type Provider interface {
	ChatCompletion(ctx context.Context, req *completion.Request) (*completion.Response, error)
}

// staticProvider returns a fixed reply regardless of input. It exists for
// keyless local runs and demos; the reply defaults to a rubric-shaped
// assessment so the full pipeline stays exercisable.
type staticProvider struct {
	reply string
}

// NewStatic creates a provider that always answers with reply. An empty
// reply selects a built-in all-Low assessment.
func NewStatic(reply string) Provider {
	if reply == "" {
		reply = defaultStaticReply
	}
	return &staticProvider{reply: reply}
}

const defaultStaticReply = `{
  "data_collecting": {"details": "Email address, account name", "severity": "Low"},
  "data_sharing": {"details": "No sharing with third parties is stated.", "severity": "Low"},
  "data_retention": {"details": "30 days after account deletion", "severity": "Low"},
  "overall_privacy_risk": "Low"
}`

func (p *staticProvider) ChatCompletion(ctx context.Context, req *completion.Request) (*completion.Response, error) {
	return &completion.Response{
		Message: completion.Message{
			Role:    completion.RoleAssistant,
			Content: p.reply,
		},
	}, nil
}
