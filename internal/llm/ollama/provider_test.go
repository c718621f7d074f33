package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "summarize", req.System)
		assert.False(t, req.Stream)

		w.Write([]byte(`{"response":"short summary","done":true,"eval_count":7}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL+"/", "")
	resp, err := p.Complete(context.Background(), llm.Request{System: "summarize", Prompt: "User: hi"}, "")
	require.NoError(t, err)
	assert.Equal(t, "short summary", resp.Content)
	assert.Equal(t, 7, resp.TokensUsed)
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewProvider("", "").IsConfigured())
	assert.True(t, NewProvider("http://localhost:11434", "").IsConfigured())
}
