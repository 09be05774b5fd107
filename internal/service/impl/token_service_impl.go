package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"authflow/internal/domain"
	"authflow/internal/observability/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "http://localhost:8081"
	Audience   string        // e.g. "client"
	TTL        time.Duration // session lifetime, 7 days by default
	SigningKey []byte        // HS256 secret
}

// ====== Claims ======

// SessionClaims carry nothing beyond the registered claims: sub is the user
// id, exp bounds the session.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &TokenServiceImpl{cfg: cfg, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and checking tokens.
func (t *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	t.now = now
	return t
}

func (t *TokenServiceImpl) Issue(ctx context.Context, userID domain.UserID) (string, time.Time, error) {
	now := t.now().UTC()
	expiresAt := now.Add(t.cfg.TTL)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	metrics.TokensIssuedTotal.WithLabelValues("issue", metrics.Result(err)).Inc()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	slog.InfoContext(ctx, "issued session token",
		withIDs(ctx, "user_id", userID, "expires_at", expiresAt)...)
	return signed, expiresAt, nil
}

// Verify checks signature, issuer, audience and expiry, and returns the
// user id in the subject. Every failure wraps domain.ErrUnauthorized.
func (t *TokenServiceImpl) Verify(ctx context.Context, token string) (domain.UserID, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	claims := &SessionClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil {
		slog.DebugContext(ctx, "session token rejected", withIDs(ctx, "error", err)...)
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	return id, nil
}
