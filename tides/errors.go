package tides

import (
	"errors"

	"github.com/timgluz/chstides/iwls"
)

var (
	// ErrConfig marks invalid or contradictory construction settings. It is
	// always detected before any request is made.
	ErrConfig = errors.New("invalid client configuration")

	// ErrState marks an operation called before the client was initialized.
	ErrState = errors.New("client is not initialized")

	ErrNotFound = iwls.ErrNotFound
	ErrUpstream = iwls.ErrUpstream
	ErrData     = iwls.ErrData
)
