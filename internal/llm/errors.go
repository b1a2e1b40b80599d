package llm

import (
	"errors"
	"fmt"
)

// ErrorKind tags the single LLM failure class.
type ErrorKind string

const (
	// KindTimeout: total wall time reached the effective timeout while
	// streaming.
	KindTimeout ErrorKind = "timeout"
	// KindTransport: endpoint unreachable, non-success status or a
	// malformed stream chunk.
	KindTransport ErrorKind = "transport"
	// KindEmpty: the model closed the stream without producing any
	// non-whitespace output.
	KindEmpty ErrorKind = "empty"
)

// Error is the one error type this package raises. The bracketed request id
// is embedded in the message so it shows up wherever the error is printed.
type Error struct {
	Kind      ErrorKind
	RequestID string
	Operation string
	Err       error
	Detail    string
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "llm request failed"
	}
	return fmt.Sprintf("[%s] llm %s error: %s", e.RequestID, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsTimeout reports whether err is an LLM timeout.
func IsTimeout(err error) bool {
	le, ok := AsError(err)
	return ok && le.Kind == KindTimeout
}
