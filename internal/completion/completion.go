// Package completion defines the narrow contract between the analysis
// pipeline and a chat-completion service.
package completion

// Message roles understood by completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role/content pair. Order inside a request is load-bearing:
// the system message always precedes the user message.
type Message struct {
	Role    string
	Content string
}

// Request is a normalized completion request. Temperature is always sent;
// TopP and Seed are pointers so "unset" stays off the wire.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	TopP        *float64
	Seed        *int64
	MaxTokens   int
}

// Usage holds token accounting as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is a normalized completion response.
type Response struct {
	Message Message
	Usage   Usage
}
