// Package common defines shared constants and sentinel errors used across
// the gateway components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrDuplicateUser = errors.New("user already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation of request input at the boundary.
	ErrValidation = errors.New("validation error")

	// Auth errors (missing, malformed/bad signature, expired, or the
	// decoded user id no longer resolves to a stored user).
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUnknownUser  = errors.New("unknown user")

	// Outbound relay errors. ErrTimeout stays distinct from ErrRelay so a
	// hanging inference backend is distinguishable from one that answered
	// with an error.
	ErrRelay   = errors.New("relay failed")
	ErrTimeout = errors.New("relay timed out")

	// Translation provider returned an empty result set.
	ErrTranslation = errors.New("translation failed")
)
