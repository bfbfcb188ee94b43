package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/dvloznov/senate-trades/internal/logger"
	"github.com/dvloznov/senate-trades/internal/query"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, ErrorResponse{Error: message})
}

// WriteAPIError maps a service error to a response. Invalid parameters become
// 400 with the offending field and its allowed values; deadline overruns
// become 504; anything else is logged and reported as 500 with failure as the
// message, hiding the cause from the client.
func WriteAPIError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	log := logger.FromContext(r.Context())

	var ipe *query.InvalidParameterError
	switch {
	case errors.As(err, &ipe):
		WriteJSON(w, r, http.StatusBadRequest, ErrorResponse{
			Error:   ipe.Error(),
			Field:   ipe.Field,
			Allowed: ipe.Allowed,
		})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg(failure)
		WriteError(w, r, http.StatusGatewayTimeout, "Query timed out")
	default:
		log.Error().Err(err).Msg(failure)
		WriteError(w, r, http.StatusInternalServerError, failure)
	}
}
