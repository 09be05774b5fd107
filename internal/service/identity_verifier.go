package service

import (
	"context"

	"authflow/internal/domain"
)

// IdentityVerifier checks a third-party ID token and returns the identity it
// asserts. Any rejection wraps domain.ErrOAuthVerificationFailed.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.GoogleIdentity, error)
}
