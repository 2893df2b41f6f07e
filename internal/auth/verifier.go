package auth

import (
	"context"
	"crypto/rsa"
	"fmt"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/utils"
)

// Verifier validates a bearer credential and returns the caller's identity
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// TokenVerifier checks RS256 ID tokens issued for a project
type TokenVerifier struct {
	projectID string
	keys      KeySource
}

// NewTokenVerifier creates a verifier for projectID using keys to resolve signing keys
func NewTokenVerifier(projectID string, keys KeySource) *TokenVerifier {
	return &TokenVerifier{projectID: projectID, keys: keys}
}

// Verify implements Verifier. Any failure wraps domain.ErrUnauthenticated.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := utils.ParseIDToken(token, v.projectID, func(kid string) (*rsa.PublicKey, error) {
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return domain.Identity{UID: claims.Subject, Email: claims.Email}, nil
}
