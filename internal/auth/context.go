package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying the verified identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the verified identity placed by the auth
// middleware. ok is false when the request never passed verification.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
