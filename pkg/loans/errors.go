package loans

import (
	"errors"
	"fmt"
)

// Failure categories, matchable with errors.Is.
var (
	ErrTransport = errors.New("loans transport failure")
	ErrRemote    = errors.New("loans remote failure")
	ErrDecode    = errors.New("loans decode failure")
)

// TransportError means no response was received (refused, timed out, cancelled).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// RemoteError means the loans service answered with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", ErrRemote, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d body: %s", ErrRemote, e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error { return ErrRemote }

// DecodeError means a 2xx body did not decode into LoanDetails.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", ErrDecode, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// StatusCode extracts the HTTP status carried by err, or 0 when none was received.
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode
	}
	var decode *DecodeError
	if errors.As(err, &decode) {
		return decode.StatusCode
	}
	return 0
}
