package events

import "event-portal/internal/remote"

// Context is the registration lifecycle stage a validation or submission
// call operates in. Every such call carries exactly one Context.
type Context string

const (
	ContextCreate Context = "create"
	ContextUpdate Context = "update"
	ContextCancel Context = "cancel"
)

// EventRef identifies a remote event either by its internal numeric id
// (authenticated path) or by a URL token (anonymous path). Exactly one of
// the two is set; both name the same target entity.
type EventRef struct {
	EventID int64
	Token   string
}

// Event is the remote system's public view of one event, fetched on demand
// and never persisted past the request.
type Event struct {
	ID     int64        `json:"id"`
	Fields remote.Reply `json:"fields"`
}

// FormDefinition is the declarative description of the registration form
// fields for a given profile and context.
type FormDefinition struct {
	Definition remote.Reply `json:"definition"`
}

// ValidationErrors maps field names to remote-reported problems.
// An empty map means the candidate values are valid.
type ValidationErrors map[string]any

// CheckinInfo carries the participant fields and the set of valid check-in
// statuses for a check-in token.
type CheckinInfo struct {
	Fields         map[string]any `json:"fields"`
	CheckinOptions map[string]any `json:"checkin_options"`
}
