package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hakim/scanreports/internal/storage"
)

const (
	msgReportNotFound = "Report not found"
	msgInternalError  = "Internal server error"
)

// ValidationError reports a request parameter that could not be coerced to
// its declared type. It is answered with 422 like FastAPI-style clients expect.
type ValidationError struct {
	Param string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be an integer, got %q", e.Param, e.Value)
}

// handlerFunc is an HTTP handler that reports failures as errors instead of
// writing error responses itself.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts h to net/http, translating its error into a status code
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

// writeError maps err to a response. Unexpected errors are logged in full but
// clients only see a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *ValidationError

	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, msgReportNotFound)
	case errors.As(err, &invalid):
		respondError(w, http.StatusUnprocessableEntity, invalid.Error())
	case errors.Is(err, context.Canceled):
		s.loggerFor(r).Debug().Err(err).Str("path", r.URL.Path).Msg("request cancelled")
		respondError(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	default:
		s.loggerFor(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
	}
}
