package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timgluz/chstides/secret"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func okHandle(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}

func TestBearerAuth(t *testing.T) {
	store, err := secret.NewTokenStore("s3cret")
	require.NoError(t, err)

	testCases := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid token", header: "Bearer s3cret", expectedStatus: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer s3cret", expectedStatus: http.StatusNoContent},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer    ", expectedStatus: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusBadRequest},
	}

	handle := BearerAuth(okHandle, store, discardLogger)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/station", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handle(w, r, nil)
			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus != http.StatusNoContent {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

type verifierFunc func(token string) bool

func (f verifierFunc) Verify(token string) bool {
	return f(token)
}

func TestBearerAuth_DelegatesToVerifier(t *testing.T) {
	var presented []string
	verifier := verifierFunc(func(token string) bool {
		presented = append(presented, token)
		return token == "rotated"
	})
	handle := BearerAuth(okHandle, verifier, discardLogger)

	for _, tc := range []struct {
		token          string
		expectedStatus int
	}{
		{token: "rotated", expectedStatus: http.StatusNoContent},
		{token: "stale", expectedStatus: http.StatusUnauthorized},
	} {
		r := httptest.NewRequest(http.MethodGet, "/station", nil)
		r.Header.Set("Authorization", "Bearer "+tc.token)
		w := httptest.NewRecorder()

		handle(w, r, nil)
		assert.Equal(t, tc.expectedStatus, w.Code, tc.token)
	}

	assert.Equal(t, []string{"rotated", "stale"}, presented)
}

func TestBearerAuth_NoStore(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/station", nil)
	r.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()

	BearerAuth(okHandle, nil, discardLogger)(w, r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWithRequestLog(t *testing.T) {
	handle := WithRequestLog(okHandle, discardLogger)

	r := httptest.NewRequest(http.MethodGet, "/conditions", nil)
	w := httptest.NewRecorder()
	handle(w, r, nil)

	assigned := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(assigned)
	assert.NoError(t, err)
	assert.Equal(t, assigned, RequestID(r))
	assert.Equal(t, http.StatusNoContent, w.Code)

	supplied := uuid.NewString()
	r = httptest.NewRequest(http.MethodGet, "/conditions", nil)
	r.Header.Set(RequestIDHeader, supplied)
	w = httptest.NewRecorder()
	handle(w, r, nil)
	assert.Equal(t, supplied, w.Header().Get(RequestIDHeader))

	r = httptest.NewRequest(http.MethodGet, "/conditions", nil)
	r.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	handle(w, r, nil)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}
