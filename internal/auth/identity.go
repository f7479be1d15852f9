// Package auth resolves and carries the trusted caller identity.
//
// The HTTP layer verifies a bearer token once per request and stores the
// resulting user id in the request context via WithIdentity. Everything
// below the transport reads it back with IdentityFrom; command payloads are
// never trusted to name their own caller.
package auth

import "context"

type identityKey struct{}

// WithIdentity returns a child context carrying the authenticated user id.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFrom extracts the authenticated user id from the context.
func IdentityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}
