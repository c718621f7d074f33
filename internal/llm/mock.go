package llm

import "context"

// MockProvider is a test double for Provider.
type MockProvider struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req Request, model string) (*Response, error)
}

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockProvider) AvailableModels() []string { return []string{"mock-model"} }
func (m *MockProvider) DefaultModel() string      { return "mock-model" }
func (m *MockProvider) IsConfigured() bool        { return true }

func (m *MockProvider) Complete(ctx context.Context, req Request, model string) (*Response, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req, model)
	}
	return &Response{Content: "mock response", Model: model}, nil
}
