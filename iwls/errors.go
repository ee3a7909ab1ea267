package iwls

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("station not found")
	ErrUpstream = errors.New("upstream service failure")
	ErrData     = errors.New("malformed response data")
)

// UpstreamError covers both an unreachable service (StatusCode is zero) and a
// non-success HTTP status.
type UpstreamError struct {
	StatusCode int
	URL        string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("iwls: request to %s failed: %v", e.URL, e.Err)
	}

	if e.Message != "" {
		return fmt.Sprintf("iwls: %s returned %d %s: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("iwls: %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// IsNotFound reports whether the service answered 404.
func (e *UpstreamError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// DataError reports a response that arrived but cannot be used: invalid JSON
// or a missing required field.
type DataError struct {
	Resource string
	Field    string
	Err      error
}

func (e *DataError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("iwls: %s: missing required field %q", e.Resource, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("iwls: %s: %v", e.Resource, e.Err)
	default:
		return fmt.Sprintf("iwls: %s: malformed response", e.Resource)
	}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Is(target error) bool {
	return target == ErrData
}

func NewMissingFieldError(resource, field string) error {
	return &DataError{Resource: resource, Field: field}
}

// IsUpstreamNotFound reports whether err is an UpstreamError carrying a 404.
func IsUpstreamNotFound(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.IsNotFound()
}
