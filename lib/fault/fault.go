package fault

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for the retry policy
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPoolTimeout
	KindConnection
	KindTransport
	KindApplication
	KindPoolClosed
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindPoolTimeout:
		return "pool timeout"
	case KindConnection:
		return "connection error"
	case KindTransport:
		return "transport fault"
	case KindApplication:
		return "application fault"
	case KindPoolClosed:
		return "pool closed"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind. A *Error matches the sentinel of its Kind with errors.Is.
var (
	ErrPoolTimeout = errors.New("pool timeout")
	ErrConnection  = errors.New("connection error")
	ErrTransport   = errors.New("transport fault")
	ErrApplication = errors.New("application fault")
	ErrPoolClosed  = errors.New("pool closed")
)

// Error is the error type returned by the pool, the RPC clients and the retry orchestrator
type Error struct {
	Kind Kind
	// Op names the operation that failed (e.g. "compose-review.UploadText")
	Op string
	// Code is the remote error code, only set for application faults
	Code int32
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if e.Kind == KindApplication && e.Code != 0 {
		return fmt.Sprintf("%s: %s (code %d): %s", e.Op, e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's Kind
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindPoolTimeout:
		return ErrPoolTimeout
	case KindConnection:
		return ErrConnection
	case KindTransport:
		return ErrTransport
	case KindApplication:
		return ErrApplication
	case KindPoolClosed:
		return ErrPoolClosed
	default:
		return nil
	}
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// PoolTimeout creates the error returned when no handle was available in time
func PoolTimeout(op string, timeout time.Duration) *Error {
	return &Error{Kind: KindPoolTimeout, Op: op, Msg: fmt.Sprintf("no client available after %s", timeout)}
}

// PoolClosed creates the error returned by a closed pool
func PoolClosed(op string) *Error {
	return &Error{Kind: KindPoolClosed, Op: op, Msg: "pool is closed"}
}

// Connection wraps a failure to establish a connection
func Connection(op string, msg string, err error) *Error {
	return &Error{Kind: KindConnection, Op: op, Msg: msg, Err: err}
}

// Transport wraps a transport level RPC failure
func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Application creates an error reported by the remote service
func Application(op string, code int32, msg string) *Error {
	return &Error{Kind: KindApplication, Op: op, Code: code, Msg: msg}
}

// --------------------------------------------------------------------------
// Classification
// --------------------------------------------------------------------------

// KindOf returns the Kind of the first *Error in err's chain, KindUnknown otherwise
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTransport reports whether err is a transport fault
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// IsApplication reports whether err is an application fault
func IsApplication(err error) bool {
	return KindOf(err) == KindApplication
}

// IsRetryable reports whether a call that failed with err may be retried on a fresh connection
func IsRetryable(err error) bool {
	return IsTransport(err)
}
