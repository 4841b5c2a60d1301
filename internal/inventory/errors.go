package inventory

import (
	"errors"
	"strings"
)

// ErrConnection marks a transport-level failure: no usable response from
// the inventory service.
var ErrConnection = errors.New("connection error")

// ErrSessionExpired marks a 401 on an authenticated call.
var ErrSessionExpired = errors.New("session expired")

// RejectionError carries the service's own explanation for refusing a
// request, either a single message or per-line details.
type RejectionError struct {
	Message string
	Details []string
}

func (e *RejectionError) Error() string {
	return e.Reason()
}

// Reason returns the human-readable rejection text, favoring per-line
// details when the service sent them.
func (e *RejectionError) Reason() string {
	if len(e.Details) > 0 {
		return strings.Join(e.Details, "\n")
	}
	if e.Message != "" {
		return e.Message
	}
	return "request rejected"
}
