package remote

// Status is the completion state the remote system reports for one call.
type Status string

const (
	StatusDone       Status = "done"
	StatusError      Status = "error"
	StatusInProgress Status = "in_progress"
)

// Call is the outcome of a single remote round-trip: the decoded reply
// payload plus the call status. Callers inspect nothing else.
type Call struct {
	reply  Reply
	status Status
}

func NewCall(reply Reply, status Status) *Call {
	if reply == nil {
		reply = Reply{}
	}
	return &Call{reply: reply, status: status}
}

func (c *Call) Reply() Reply {
	return c.reply
}

func (c *Call) Status() Status {
	return c.status
}

// Completed reports whether the remote system fully processed the call.
func (c *Call) Completed() bool {
	return c.status == StatusDone
}
