package provider

import (
	"context"

	"github.com/privascope-ai/privascope/internal/completion"
)

// FakeProvider is a test double that returns a canned reply and records
// the requests it saw.
type FakeProvider struct {
	ResponseText string
	Error        error

	Calls       int
	LastRequest *completion.Request
}

func (f *FakeProvider) ChatCompletion(ctx context.Context, req *completion.Request) (*completion.Response, error) {
	f.Calls++
	f.LastRequest = req

	if f.Error != nil {
		return nil, f.Error
	}

	return &completion.Response{
		Message: completion.Message{
			Role:    completion.RoleAssistant,
			Content: f.ResponseText,
		},
		Usage: completion.Usage{
			PromptTokens:     2,
			CompletionTokens: 3,
			TotalTokens:      5,
		},
	}, nil
}

func NewFake(response string) *FakeProvider {
	return &FakeProvider{ResponseText: response}
}
