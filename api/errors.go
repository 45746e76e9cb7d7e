package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call. It is decided once, when the response
// (or the lack of one) is seen, so callers never inspect message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
	KindTransport
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// kindForStatus maps a non-2xx status code to a Kind
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// APIError is returned for every failed call. Message is the human-readable
// text the backend sent (its "detail"), or the status text when it sent none.
type APIError struct {
	Op      string // Client method, e.g. "UpdateUserRole"
	Method  string
	Path    string
	Status  int // 0 when no response was received
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Detail formats the error for logs
func (e *APIError) Detail() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s %s: %d %s", e.Op, e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Op, e.Method, e.Path, e.Message)
}

// KindOf returns the Kind of an *APIError anywhere in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthenticated reports a missing or rejected bearer token (401)
func IsUnauthenticated(err error) bool { return KindOf(err) == KindUnauthenticated }

// IsForbidden reports an authenticated caller lacking permission (403)
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// IsNotFound reports a 404
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports a rejected request body or parameters
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
