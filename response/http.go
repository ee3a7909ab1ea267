package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/tides"
)

const (
	JSONContentType = "application/json"
	HTMLContentType = "text/html"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// StatusCode maps the client error taxonomy onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, tides.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, tides.ErrState):
		return http.StatusConflict
	case errors.Is(err, iwls.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, iwls.ErrUpstream), errors.Is(err, iwls.ErrData):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func RenderFatal(w http.ResponseWriter, err error) {
	RenderError(w, err, http.StatusInternalServerError)
}

func RenderError(w http.ResponseWriter, err error, statusCode int) {
	body, marshalErr := json.Marshal(ErrorResponse{Error: err.Error(), Status: statusCode})
	if marshalErr != nil {
		body = []byte(`{"error": "internal error"}`)
	}

	w.Header().Set("Content-Type", JSONContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// RenderClientError renders err with the status code StatusCode picks for it.
func RenderClientError(w http.ResponseWriter, err error) {
	RenderError(w, err, StatusCode(err))
}

func RenderSuccess(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func RenderJSONResponse(w http.ResponseWriter, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		RenderFatal(w, fmt.Errorf("failed to marshal data: %w", err))
		return
	}

	RenderSuccess(w, jsonData)
}
