package auth

import (
	"context"

	"finance_tracker/internal/domain"
)

type identityKey struct{}

// WithIdentity attaches a verified identity to ctx
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the access guard
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok && id.UID != ""
}
