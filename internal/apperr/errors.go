// Package apperr carries the typed failures the service layer returns.
// Handlers map kinds to HTTP status codes; everything else just wraps.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the HTTP layer.
type Kind string

const (
	// KindParameter marks caller-supplied data that is invalid or violates a
	// business rule. Always safe to show to the caller.
	KindParameter Kind = "parameter"
	// KindAuth marks a credential or token that failed verification.
	KindAuth Kind = "authentication"
	// KindRateLimited marks a request rejected by a rate limit.
	KindRateLimited Kind = "rate_limited"
	// KindSystem marks a persistence or collaborator failure. Surfaced to the
	// caller as an opaque error, logged with full context.
	KindSystem Kind = "system"
)

// Error is the one error type the service layer returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr values by kind and message, so sentinel
// style comparisons in tests keep working.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || e.Message == t.Message)
}

// Parameter builds a caller-visible business rule violation.
func Parameter(msg string) error {
	return &Error{Kind: KindParameter, Message: msg}
}

// Auth builds a credential/token verification failure.
func Auth(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

// RateLimited builds a rate limit rejection.
func RateLimited(msg string) error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// System wraps an internal failure. The wrapped error is kept for logs and
// never shown to the caller.
func System(msg string, err error) error {
	return &Error{Kind: KindSystem, Message: msg, Err: err}
}

// KindOf reports the kind of err. Unclassified errors count as system
// failures so nothing internal leaks by default.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}
