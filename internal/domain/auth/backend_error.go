package auth

import (
	"errors"
	"fmt"
)

// BackendError is a failed call to the HR backend's auth API.
//
// Transport is true when no response was received; Message then carries nothing
// the user should see and the caller falls back to a generic text.
type BackendError struct {
	Op        string
	Status    int
	Message   string
	Transport bool
	Err       error
}

func (e *BackendError) Error() string {
	switch {
	case e.Transport:
		return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *BackendError) Unwrap() error { return e.Err }

// UserMessage returns the text shown in the status slot for err.
// Backend-supplied messages are surfaced verbatim; everything else yields fallback.
func UserMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && !be.Transport && be.Message != "" {
		return be.Message
	}
	return fallback
}

// IsTransport reports whether err is a backend call that never got a response.
func IsTransport(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Transport
}
