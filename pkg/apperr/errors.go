// Package apperr classifies failures so that callers can decide whether to
// retry, degrade or surface them.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks network and timeout failures. Retried within a fixed budget.
	ErrTransport = errors.New("transport error")
	// ErrNotFound marks a lookup with no match in an external catalog. Terminal.
	ErrNotFound = errors.New("not found")
	// ErrPersistence marks disk read or write failures on user state.
	ErrPersistence = errors.New("persistence error")
	// ErrClientConnection marks an unreachable or unauthorized download client.
	ErrClientConnection = errors.New("download client connection error")
)

// Error is an operation failure of a specific kind.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Transport wraps err as a TransportError.
func Transport(op string, err error) error {
	return &Error{Kind: ErrTransport, Op: op, Err: err}
}

// NotFound wraps err as a NotFoundError.
func NotFound(op string, err error) error {
	return &Error{Kind: ErrNotFound, Op: op, Err: err}
}

// Persistence wraps err as a PersistenceError.
func Persistence(op string, err error) error {
	return &Error{Kind: ErrPersistence, Op: op, Err: err}
}

// ClientConnection wraps err as a ClientConnectionError.
func ClientConnection(op string, err error) error {
	return &Error{Kind: ErrClientConnection, Op: op, Err: err}
}

func IsTransport(err error) bool        { return errors.Is(err, ErrTransport) }
func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsPersistence(err error) bool      { return errors.Is(err, ErrPersistence) }
func IsClientConnection(err error) bool { return errors.Is(err, ErrClientConnection) }
