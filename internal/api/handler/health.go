package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/estate-chat/internal/api/response"
	"github.com/Rrens/estate-chat/internal/llm"
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheFlusher clears cached warehouse schemas.
type CacheFlusher interface {
	FlushAll(ctx context.Context) (int64, error)
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports ready when every named dependency answers a ping.
func ReadyCheck(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, p := range deps {
			if err := p.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, name+" not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListLLMProviders returns the registered LLM providers
func ListLLMProviders(providers *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        providers.GetProvidersInfo(),
			"default_provider": providers.DefaultProvider(),
		})
	}
}

// FlushCache clears the cached warehouse schema. A nil cache flushes nothing.
func FlushCache(schemaCache CacheFlusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var deleted int64
		if schemaCache != nil {
			n, err := schemaCache.FlushAll(r.Context())
			if err != nil {
				response.InternalError(w, "failed to flush cache: "+err.Error())
				return
			}
			deleted = n
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
