// Package apierr defines the error envelope shared by the mock API and its
// clients. Every non-2xx response carries {"error": ..., "details": ...};
// clients decode that back into an *Error so callers can branch on kind.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindRateLimit  Kind = "rate_limit"
	KindTransient  Kind = "transient"
	KindTimeout    Kind = "timeout"
)

type Error struct {
	Kind       Kind
	Status     int
	Message    string
	Details    map[string][]string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func Validation(message string, details map[string][]string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: message, Details: details}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: message}
}

func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: message}
}

func RateLimit(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimit, Status: http.StatusTooManyRequests, Message: message, RetryAfter: retryAfter}
}

func Transient(status int, message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindTransient, Status: status, Message: message, RetryAfter: retryAfter}
}

func Timeout(message string) *Error {
	return &Error{Kind: KindTimeout, Status: http.StatusGatewayTimeout, Message: message}
}

// FromStatus maps a response status to the error kind a client should
// assume when the body carried no richer signal.
func FromStatus(status int, message string) *Error {
	e := &Error{Status: status, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden:
		e.Kind = KindPermission
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusConflict:
		e.Kind = KindConflict
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	case status == http.StatusGatewayTimeout:
		e.Kind = KindTimeout
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case status >= 500:
		e.Kind = KindTransient
	default:
		e.Kind = KindTransient
	}
	return e
}

// IsRetryable reports whether retrying the same operation can reasonably
// succeed without the caller changing anything.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindRateLimit || e.Kind == KindTransient || e.Kind == KindTimeout
}

// RetryAfter returns the server-provided retry hint, or zero when the
// error carries none.
func RetryAfter(err error) time.Duration {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.RetryAfter
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
