package llm_test

import (
	"context"
	"testing"

	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name       string
	configured bool
}

func (s stubProvider) Name() string              { return s.name }
func (s stubProvider) AvailableModels() []string { return []string{s.name + "-model"} }
func (s stubProvider) DefaultModel() string      { return s.name + "-model" }
func (s stubProvider) IsConfigured() bool        { return s.configured }
func (s stubProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	return &llm.Response{Content: req.Prompt, Model: model}, nil
}

func TestRouter_GetProvider(t *testing.T) {
	r := llm.NewRouter("openai")
	r.RegisterProvider(stubProvider{name: "openai", configured: true})
	r.RegisterProvider(stubProvider{name: "anthropic", configured: false})

	p, err := r.GetProvider("")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = r.GetProvider("anthropic")
	assert.ErrorContains(t, err, "not configured")

	_, err = r.GetProvider("gemini")
	assert.ErrorContains(t, err, "not found")

	assert.Equal(t, []string{"openai"}, r.ListProviders())

	infos := r.GetProvidersInfo()
	require.Len(t, infos, 2)
	assert.Equal(t, "anthropic", infos[0].Name)
	assert.True(t, infos[1].Default)
}
