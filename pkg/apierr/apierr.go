// Package apierr defines the uniform error taxonomy for the generation
// backends. Every transport-, backend- or precondition-level failure is
// normalized into an *Error so callers never see provider-specific shapes.
package apierr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Kind is the symbolic classification of an API failure.
type Kind string

const (
	Unauthenticated   Kind = "UNAUTHENTICATED"
	InvalidArgument   Kind = "INVALID_ARGUMENT"
	ResourceExhausted Kind = "RESOURCE_EXHAUSTED"
	Unavailable       Kind = "UNAVAILABLE"
	Timeout           Kind = "TIMEOUT"
	NetworkError      Kind = "NETWORK_ERROR"
	Internal          Kind = "INTERNAL"
	Unknown           Kind = "UNKNOWN"
)

// Error is the normalized API error. Code is the numeric status analogue
// (HTTP status where one exists, 0 for pure transport failures).
type Error struct {
	Kind      Kind      `json:"kind"`
	Code      int       `json:"code,omitempty"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates an Error stamped with the current time.
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Timestamp: time.Now()}
}

// Newf is New with Sprintf formatting.
func Newf(kind Kind, code int, format string, args ...any) *Error {
	return New(kind, code, fmt.Sprintf(format, args...))
}

// WithDetails attaches an opaque diagnostic payload and returns the error.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// Log emits the error through slog before it propagates or is suppressed.
// This is the externally visible diagnostic trail, so clients call it on
// every failure path.
func (e *Error) Log(scope string) *Error {
	slog.Error(scope,
		"kind", string(e.Kind),
		"code", e.Code,
		"message", e.Message,
		"details", e.Details,
		"timestamp", e.Timestamp.Format(time.RFC3339),
	)
	return e
}

// KindOf extracts the Kind from any error chain. Non-taxonomy errors map
// to Unknown; nil maps to the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return Unknown
}

// As unwraps err into an *Error, or wraps it as Unknown so handlers always
// have a taxonomy error to report.
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(Unknown, 0, err.Error())
}

// FromHTTPStatus classifies a non-2xx backend response. backendMessage and
// backendStatus come from the provider's error envelope when present.
func FromHTTPStatus(status int, backendMessage, backendStatus string) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return New(Unauthenticated, status,
			"Authentication failed. Please check your API key configuration.").
			WithDetails(backendMessage)
	case status == http.StatusTooManyRequests:
		return New(ResourceExhausted, status,
			"Rate limit exceeded. Please wait a few moments before trying again.").
			WithDetails(backendMessage)
	case status == http.StatusServiceUnavailable:
		return New(Unavailable, status,
			"The generation backend is temporarily unavailable. Please try again later.").
			WithDetails(backendMessage)
	case status == http.StatusBadRequest:
		msg := backendMessage
		if msg == "" {
			msg = "The backend rejected the request."
		}
		return New(InvalidArgument, status, msg)
	default:
		msg := backendMessage
		if msg == "" {
			msg = fmt.Sprintf("API request failed with status %d", status)
		}
		kind := Unknown
		if backendStatus != "" {
			kind = Kind(backendStatus)
		}
		return New(kind, status, msg)
	}
}

// HTTPStatus maps a Kind back to the status code the local API reports.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case ResourceExhausted:
		return http.StatusTooManyRequests
	case Unavailable:
		return http.StatusServiceUnavailable
	case Timeout:
		return http.StatusGatewayTimeout
	case NetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
