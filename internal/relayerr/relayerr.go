// Package relayerr provides structured error handling for the relay's
// data plane: a typed error with a kind and an operation, in place of
// bare sentinel errors, matching the shape this team's HTTP services
// use (internal/errors) minus the HTTP status mapping the data plane
// has no use for.
package relayerr

import (
	"errors"
	"fmt"
)

// Kind categorizes a data-plane failure.
type Kind string

const (
	// TransportClosed indicates the peer closed the connection, cleanly
	// or mid-frame.
	TransportClosed Kind = "transport_closed"
	// TransportError indicates an I/O error unrelated to a clean close.
	TransportError Kind = "transport_error"
	// ProtocolViolation indicates a malformed length prefix.
	ProtocolViolation Kind = "protocol_violation"
	// AcceptFailed indicates a recoverable failure to admit a new
	// connection; the accept loop continues.
	AcceptFailed Kind = "accept_failed"
)

// Error is a structured data-plane error: what kind of failure, which
// operation raised it, and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New builds an *Error.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap supports errors.Is/errors.As against the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
