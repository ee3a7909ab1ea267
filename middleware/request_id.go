package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const RequestIDHeader = "X-Request-ID"

// RequestID returns the request id assigned by WithRequestLog, or the one
// sent by the caller.
func RequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithRequestLog keeps a valid caller supplied X-Request-ID or assigns a new
// one, echoes it in the response and logs the outcome of every request.
func WithRequestLog(h httprouter.Handle, logger *slog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
			r.Header.Set(RequestIDHeader, requestID)
		}
		w.Header().Set(RequestIDHeader, requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		h(recorder, r, ps)

		logger.Info("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(started),
			"requestID", requestID,
		)
	}
}
