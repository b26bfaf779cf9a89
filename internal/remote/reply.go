package remote

// Params is the outbound parameter map for one remote call.
type Params map[string]any

// Reply is the decoded payload of a remote call. Accessors tolerate the
// loose typing of the wire format; absent or malformed entries read as empty.
type Reply map[string]any

func (r Reply) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// ErrorMessage returns the remote-reported error message, if any.
func (r Reply) ErrorMessage() string {
	if msg, ok := r["error_message"].(string); ok {
		return msg
	}
	return ""
}

// Values returns the operation payload sub-map. For validation calls this
// carries the field-level errors.
func (r Reply) Values() map[string]any {
	if values, ok := r["values"].(map[string]any); ok {
		return values
	}
	return map[string]any{}
}

func (r Reply) Fields() map[string]any {
	if fields, ok := r["fields"].(map[string]any); ok {
		return fields
	}
	return map[string]any{}
}

func (r Reply) CheckinOptions() map[string]any {
	if opts, ok := r["checkin_options"].(map[string]any); ok {
		return opts
	}
	return map[string]any{}
}

// StatusMessages returns the human-readable notices attached to a reply.
// The remote side sends either plain strings or objects with a message key.
func (r Reply) StatusMessages() []string {
	raw, ok := r["status_messages"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				out = append(out, msg)
			}
		}
	}
	return out
}
