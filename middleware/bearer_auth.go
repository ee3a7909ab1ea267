package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/timgluz/chstides/response"
	"github.com/timgluz/chstides/secret"
)

var (
	ErrUnauthorized          = fmt.Errorf("unauthorized")
	ErrUnsupportedAuthScheme = fmt.Errorf("unsupported authorization type")
	ErrServiceNotReady       = fmt.Errorf("service is not ready")
)

const bearerPrefix = "bearer "

// BearerAuth lets a request through only when verifier accepts its bearer token.
func BearerAuth(h httprouter.Handle, verifier secret.Verifier, logger *slog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < len(bearerPrefix) {
			unauthorized(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		if strings.ToLower(authHeader[:len(bearerPrefix)]) != bearerPrefix {
			unauthorized(w, ErrUnsupportedAuthScheme, http.StatusBadRequest)
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if token == "" {
			unauthorized(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		if verifier == nil {
			logger.Error("Token verifier is not initialized")
			response.RenderError(w, ErrServiceNotReady, http.StatusInternalServerError)
			return
		}

		if !verifier.Verify(token) {
			logger.Warn("Rejected bearer token", "path", r.URL.Path, "requestID", RequestID(r))
			unauthorized(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		h(w, r, ps)
	}
}

func unauthorized(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	response.RenderError(w, err, statusCode)
}
