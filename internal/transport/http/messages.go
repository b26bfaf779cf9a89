package httptransport

import (
	"context"
	"net/http"
	"sync"
)

// messageBuffer collects the status messages the gateway forwards during one
// request; handlers return them in the response envelope.
type messageBuffer struct {
	mu   sync.Mutex
	msgs []string
}

func (b *messageBuffer) append(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (b *messageBuffer) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.msgs))
	copy(out, b.msgs)
	return out
}

type messagesCtxKey struct{}

// MessageCollector attaches a fresh message buffer to each request.
func MessageCollector() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), messagesCtxKey{}, &messageBuffer{})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MessagesFrom returns the messages collected so far for this request.
func MessagesFrom(ctx context.Context) []string {
	if b, ok := ctx.Value(messagesCtxKey{}).(*messageBuffer); ok {
		return b.all()
	}
	return nil
}

// Collector implements events.Messenger against the request buffer.
type Collector struct{}

func (Collector) Notify(ctx context.Context, message string) {
	if b, ok := ctx.Value(messagesCtxKey{}).(*messageBuffer); ok {
		b.append(message)
	}
}
