package server

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/observability"
)

// errorBody is the JSON body of every failed request.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := RequestIDFrom(r.Context())

	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "route", route, "err", err, "request_id", id)
	} else {
		s.logger.Debug("request rejected", "route", route, "status", status, "err", err, "request_id", id)
	}

	writeJSON(w, status, errorBody{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: id,
	})
}
