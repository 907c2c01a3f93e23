package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrGuest            = errors.New("guest session cannot reserve")
	ErrTimeSlotRequired = errors.New("time slot is required")
	ErrModalClosed      = errors.New("reservation modal is not open")
	ErrSubmitInFlight   = errors.New("reservation already being submitted")
	ErrUnknownTarget    = errors.New("unknown event target")
	ErrBadEvent         = errors.New("malformed event")
)

// APIError is a non-2xx answer from the campus backend.
type APIError struct {
	Status  int
	Message string // server-provided, may be empty
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("campus api: status %d", e.Status)
	}
	return fmt.Sprintf("campus api: status %d: %s", e.Status, e.Message)
}

// ServerMessage returns the backend's error text carried by err, if any.
func ServerMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}
