package handler

import (
	"errors"
	"net/http"

	"github.com/Rrens/estate-chat/internal/api/response"
	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// writeError maps service errors to HTTP statuses. Internal details are
// logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var capErr *domain.CapabilityError
	switch {
	case errors.Is(err, domain.ErrMalformedRequest):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "session not found")
	case errors.As(err, &capErr):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("capability unavailable")
		response.GatewayTimeout(w, "the assistant took too long to answer, please try again")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		response.InternalError(w, "internal server error")
	}
}

// validationErrors flattens validator errors into field messages.
func validationErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "field is required"
		case "email":
			fields[e.Field()] = "invalid email format"
		case "min":
			fields[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			fields[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			fields[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return fields
}
