package events

import "context"

// Messenger receives the status messages the remote system attaches to a
// successful reply. The gateway forwards them only when the caller opts in.
type Messenger interface {
	Notify(ctx context.Context, message string)
}

// NopMessenger discards all messages.
type NopMessenger struct{}

func (NopMessenger) Notify(context.Context, string) {}
