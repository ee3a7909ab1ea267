package response

import (
	"fmt"
	"log/slog"
	"net/http"
)

var ErrNotFound = fmt.Errorf("request resource does not exist")

func NewNotFoundHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("Resource not found", "method", r.Method, "path", r.URL.Path)
		RenderError(w, ErrNotFound, http.StatusNotFound)
	}
}

// NewPanicHandler reports a recovered handler panic as an internal error.
func NewPanicHandler(logger *slog.Logger) func(http.ResponseWriter, *http.Request, any) {
	return func(w http.ResponseWriter, r *http.Request, recovered any) {
		logger.Error("Handler panicked", "path", r.URL.Path, "panic", recovered)
		RenderFatal(w, fmt.Errorf("internal server error"))
	}
}
