package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"authflow/internal/domain"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// GoogleVerifier checks Google ID tokens against Google's published signing keys.
type GoogleVerifier struct {
	clientID string
	keyfunc  jwt.Keyfunc
	jwks     *keyfunc.JWKS
}

func NewGoogleVerifier(jwksURL, clientID string) (*GoogleVerifier, error) {
	options := keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			slog.Warn("google jwks refresh failed", "error", err)
		},
	}
	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, fmt.Errorf("load google jwks: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, keyfunc: jwks.Keyfunc, jwks: jwks}, nil
}

// NewGoogleVerifierWithKeyfunc verifies signatures with kf instead of a remote JWKS.
func NewGoogleVerifierWithKeyfunc(clientID string, kf jwt.Keyfunc) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, keyfunc: kf}
}

// Close stops the background key refresh.
func (g *GoogleVerifier) Close() {
	if g.jwks != nil {
		g.jwks.EndBackground()
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*domain.GoogleIdentity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: empty credential", domain.ErrOAuthVerificationFailed)
	}
	claims := &googleClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.ParseWithClaims(idToken, claims, g.keyfunc)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrOAuthVerificationFailed, err)
	}
	if !claims.VerifyAudience(g.clientID, true) {
		return nil, fmt.Errorf("%w: audience mismatch", domain.ErrOAuthVerificationFailed)
	}
	if !googleIssuer(claims.Issuer) {
		return nil, fmt.Errorf("%w: issuer %q", domain.ErrOAuthVerificationFailed, claims.Issuer)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", domain.ErrOAuthVerificationFailed)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", domain.ErrOAuthVerificationFailed)
	}
	return &domain.GoogleIdentity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func googleIssuer(iss string) bool {
	for _, want := range googleIssuers {
		if iss == want {
			return true
		}
	}
	return false
}

// DisabledVerifier rejects every token. It stands in when no Google client
// id is configured.
type DisabledVerifier struct{}

func (DisabledVerifier) Verify(context.Context, string) (*domain.GoogleIdentity, error) {
	return nil, fmt.Errorf("%w: google sign-in is not configured", domain.ErrOAuthVerificationFailed)
}
