package identity

import "context"

// Directory looks up the remote contact identifier for a portal user.
type Directory interface {
	RemoteContactID(ctx context.Context, userID string) (string, error)
}

// Resolver derives the remote contact identifier for the current request.
// The result is only ever computed server-side from the resolved identity,
// never taken from request input.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// RemoteContactID resolves the contact for the identity carried in ctx.
// Anonymous requests (token flows) resolve to the empty identifier.
func (r *Resolver) RemoteContactID(ctx context.Context) (string, error) {
	id, ok := FromContext(ctx)
	if !ok || id.UserID == "" {
		return "", nil
	}
	return r.dir.RemoteContactID(ctx, id.UserID)
}
