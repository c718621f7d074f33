package llm

import "context"

// Request is a single completion call. System is optional.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response contains LLM generation result
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete sends one prompt and returns the model's text reply
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}

const defaultMaxTokens = 2048

// MaxTokensOrDefault returns req.MaxTokens, or a provider-neutral default when unset.
func MaxTokensOrDefault(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
