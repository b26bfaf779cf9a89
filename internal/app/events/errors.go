package events

import "errors"

var (
	ErrEventNotFound       = errors.New("event_not_found")
	ErrFormRetrieval       = errors.New("form_retrieval_failed")
	ErrValidationCall      = errors.New("validation_call_failed")
	ErrRegistration        = errors.New("registration_failed")
	ErrRegistrationUpdate  = errors.New("registration_update_failed")
	ErrCancellation        = errors.New("cancellation_failed")
	ErrCheckinVerification = errors.New("checkin_verification_failed")
	ErrCheckin             = errors.New("checkin_failed")
)

// Error is a gateway failure. Message is safe to show to end users: either
// the remote system's own error message or a generic fallback, never a
// transport detail. The kind sentinel is reachable via errors.Is; the
// underlying cause is logged where the Error is created and stays internal.
type Error struct {
	kind    error
	Message string
	cause   error
}

func newError(kind error, message string, cause error) *Error {
	return &Error{kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}
