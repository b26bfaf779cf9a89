// Package identity resolves the ambient request identity to the remote
// contact identifier injected into every outbound call.
package identity

import "context"

// Identity is the authenticated portal user for the current request.
type Identity struct {
	UserID string
	Name   string
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}
