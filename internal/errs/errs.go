// Package errs defines the request-facing error taxonomy and its mapping to
// HTTP status codes, per the error handling design: a short opaque kind
// travels to the caller, while wrapped internal detail stays in logs only.
package errs

import (
	"errors"
	"net/http"
)

// Kind is one of the named error categories the HTTP layer understands.
type Kind string

const (
	InputInvalid              Kind = "InputInvalid"
	ConfigInvalid              Kind = "ConfigInvalid"
	RpcFailure                 Kind = "RpcFailure"
	SnapshotInconsistent       Kind = "SnapshotInconsistent"
	SnapshotTooNarrow          Kind = "SnapshotTooNarrow"
	ReferencePriceUnavailable  Kind = "ReferencePriceUnavailable"
	BridgeUnavailable          Kind = "BridgeUnavailable"
	ArithmeticOverflow         Kind = "ArithmeticOverflow"
	NoConvergence              Kind = "NoConvergence"
	DeadlineExceeded           Kind = "DeadlineExceeded"
	PoolExhausted              Kind = "PoolExhausted"
	InsufficientLiquidity      Kind = "InsufficientLiquidity"
)

var statusByKind = map[Kind]int{
	InputInvalid:              http.StatusBadRequest,
	ConfigInvalid:              http.StatusInternalServerError,
	RpcFailure:                 http.StatusBadGateway,
	SnapshotInconsistent:       http.StatusBadGateway,
	SnapshotTooNarrow:          http.StatusBadGateway,
	ReferencePriceUnavailable:  http.StatusBadGateway,
	BridgeUnavailable:          http.StatusBadGateway,
	ArithmeticOverflow:         http.StatusInternalServerError,
	NoConvergence:              http.StatusInternalServerError,
	DeadlineExceeded:           http.StatusGatewayTimeout,
	PoolExhausted:              http.StatusServiceUnavailable,
	InsufficientLiquidity:      http.StatusBadGateway,
}

// Error is a taxonomy-tagged error. Message is safe to return to callers;
// Cause (if set) is logged but never serialized into the response.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a tagged error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an existing error with a kind and a caller-safe message, keeping
// the original error for logs.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// HTTPStatus maps any error to a status code, defaulting to 500 when the
// error does not carry a recognized Kind.
func HTTPStatus(err error) int {
	var tagged *Error
	if errors.As(err, &tagged) {
		if status, ok := statusByKind[tagged.Kind]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// KindOf extracts the Kind of a tagged error, or "" if untagged.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}
