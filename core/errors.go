package core

import "errors"

// Action error kinds. Every failure returned by the action layer unwraps to
// exactly one of these.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")   // 401
	ErrValidationFailed = errors.New("validation failed") // 400
	ErrStoreUnavailable = errors.New("store unavailable") // 503
	ErrNotFound         = errors.New("not found")         // 404
)

// Authentication Related Errors
var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Session errors
var (
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrCacheNotFound   = errors.New("session not found in cache")
)

// Content store errors
var (
	ErrSlugExists       = errors.New("slug already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPostNotFound     = errors.New("post not found")
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required")
	ErrHTTPAdapterRequired = errors.New("adapter is required")
	ErrSecretRequired      = errors.New("secret is required")
	ErrSecretTooShort      = errors.New("secret too short")
)

// ActionError is the only error type the action layer hands to callers.
// Message is safe to show to end users; the underlying store error is
// logged, never carried.
type ActionError struct {
	Kind    error
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Kind
}

// NewActionError builds an ActionError of the given kind.
func NewActionError(kind error, message string) *ActionError {
	return &ActionError{Kind: kind, Message: message}
}

// KindOf returns the action kind of err, or ErrStoreUnavailable for
// anything that is not an ActionError.
func KindOf(err error) error {
	var ae *ActionError
	if errors.As(err, &ae) && ae.Kind != nil {
		return ae.Kind
	}
	return ErrStoreUnavailable
}
