package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"authflow/internal/domain"
	"authflow/internal/dto"
	"authflow/internal/events"
	"authflow/internal/observability/metrics"
	"authflow/internal/service"
	"authflow/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	googleUsernameAttempts = 5
	googleUsernameMaxBase  = 14
	dummyPassword          = "not-a-real-password-0"
)

type AuthServiceImpl struct {
	Users           userStore
	PasswordService service.PasswordService
	TService        service.TokenService
	Verifier        service.IdentityVerifier
	Events          events.Sink
	Now             func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthServiceImpl(
	st *store.Store,
	passwordService service.PasswordService,
	tokenService service.TokenService,
	verifier service.IdentityVerifier,
	sink events.Sink,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		Users:           st.Users(),
		PasswordService: passwordService,
		TService:        tokenService,
		Verifier:        verifier,
		Events:          sink,
		Now:             time.Now,
	}
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (out *dto.AuthResponse, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	// 1) sanitize, then validate in order: username, email, password
	username, err := sanitize(domain.FieldUsername, r.Username)
	if err != nil {
		return nil, err
	}
	if _, err := sanitize(domain.FieldEmail, r.Email); err != nil {
		return nil, err
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(r.Email, domain.ErrInvalidFormat)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(domain.FieldPassword, r.Password); err != nil {
		return nil, err
	}

	// 2) both lookups run together; the unique index still has the final say
	var emailTaken, usernameTaken bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emailTaken, err = found(a.Users.GetByEmail(gctx, email))
		return err
	})
	g.Go(func() error {
		var err error
		usernameTaken, err = found(a.Users.GetByUsername(gctx, username))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	switch {
	case emailTaken:
		return nil, &domain.DuplicateIdentityError{Field: domain.FieldEmail}
	case usernameTaken:
		return nil, &domain.DuplicateIdentityError{Field: domain.FieldUsername}
	}

	// 3) hash + create
	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := clock(a.Now)
	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		AuthProvider: domain.AuthProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Users.Create(ctx, u); err != nil {
		var dup *domain.DuplicateIdentityError
		if errors.As(err, &dup) {
			slog.InfoContext(ctx, "registration lost uniqueness race", withIDs(ctx, "field", dup.Field)...)
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	a.publish(ctx, events.UserRegistered{UserID: u.ID.String(), Email: u.Email, Provider: u.AuthProvider, At: now})
	slog.InfoContext(ctx, "user registered", withIDs(ctx, "user_id", u.ID, "email", u.Email)...)
	return a.signIn(ctx, u)
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (out *dto.AuthResponse, err error) {
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	email, err := normalizeEmail(r.Email, domain.ErrInvalidFormat)
	if err != nil {
		return nil, err
	}

	// 1) load user; unknown emails still pay for one hash verification
	user, err := a.Users.GetByEmail(ctx, email)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("load user: %w", err)
		}
		a.PasswordService.Verify(r.Password, a.dummy())
		return nil, domain.ErrInvalidCredentials
	}
	if !user.HasPassword() {
		a.PasswordService.Verify(r.Password, a.dummy())
		return nil, domain.ErrInvalidCredentials
	}

	// 2) verify password (and decide if we should rehash)
	rehashNeeded, ok := a.PasswordService.Verify(r.Password, user.PasswordHash)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	// 3) transparent rehash; a failure here does not block the login
	if rehashNeeded {
		if hash, err := a.PasswordService.Hash(r.Password); err == nil {
			if err := a.Users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				slog.WarnContext(ctx, "password rehash not saved", withIDs(ctx, "user_id", user.ID, "error", err)...)
			}
		}
	}

	a.publish(ctx, events.UserSignedIn{UserID: user.ID.String(), Provider: domain.AuthProviderLocal, At: clock(a.Now)})
	return a.signIn(ctx, user)
}

func (a *AuthServiceImpl) GoogleSignIn(ctx context.Context, r dto.GoogleSignInRequest) (out *dto.AuthResponse, err error) {
	outcome := "existing"
	defer func() {
		metrics.GoogleSignInsTotal.WithLabelValues(outcome, metrics.Result(err)).Inc()
	}()

	identity, err := a.Verifier.Verify(ctx, r.Credential)
	if err != nil {
		slog.InfoContext(ctx, "google token rejected", withIDs(ctx, "error", err)...)
		if errors.Is(err, domain.ErrOAuthVerificationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrOAuthVerificationFailed, err)
	}
	email, err := normalizeEmail(identity.Email, domain.ErrOAuthVerificationFailed)
	if err != nil {
		return nil, err
	}

	user, err := a.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case isNotFound(err):
		outcome = "created"
		user, err = a.createGoogleUser(ctx, identity, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}

	a.publish(ctx, events.UserSignedIn{UserID: user.ID.String(), Provider: domain.AuthProviderGoogle, At: clock(a.Now)})
	return a.signIn(ctx, user)
}

// createGoogleUser inserts a password-less account for identity. A username
// collision picks a new suffix; an email collision means a concurrent first
// sign-in won, so its record is returned.
func (a *AuthServiceImpl) createGoogleUser(ctx context.Context, identity *domain.GoogleIdentity, email string) (*domain.User, error) {
	now := clock(a.Now)
	var picture *string
	if identity.Picture != "" {
		p := identity.Picture
		picture = &p
	}
	base := usernameBase(identity.Name, email)

	for attempt := 0; attempt < googleUsernameAttempts; attempt++ {
		suffix, err := randomDigits(4)
		if err != nil {
			return nil, err
		}
		u := &domain.User{
			ID:           uuid.New(),
			Username:     base + "_" + suffix,
			Email:        email,
			DisplayName:  strings.TrimSpace(identity.Name),
			Picture:      picture,
			AuthProvider: domain.AuthProviderGoogle,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = a.Users.Create(ctx, u)
		if err == nil {
			a.publish(ctx, events.UserRegistered{UserID: u.ID.String(), Email: u.Email, Provider: u.AuthProvider, At: now})
			slog.InfoContext(ctx, "user created from google sign-in", withIDs(ctx, "user_id", u.ID, "email", u.Email)...)
			return u, nil
		}
		var dup *domain.DuplicateIdentityError
		if !errors.As(err, &dup) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		if dup.Field == domain.FieldEmail {
			existing, err := a.Users.GetByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("load user: %w", err)
			}
			return existing, nil
		}
	}
	return nil, ErrUsernameExhausted
}

// usernameBase derives the stem of a generated username from the email local
// part, falling back to the display name.
func usernameBase(name, email string) string {
	local, _, _ := strings.Cut(email, "@")
	base := keepUsernameChars(local)
	if len(base) < 3 {
		base = keepUsernameChars(name)
	}
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > googleUsernameMaxBase {
		base = base[:googleUsernameMaxBase]
	}
	return base
}

func keepUsernameChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_', '0' <= r && r <= '9', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (a *AuthServiceImpl) Me(ctx context.Context, userID domain.UserID) (*dto.MeResponse, error) {
	user, err := a.Users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &dto.MeResponse{User: dto.NewUserResponse(user)}, nil
}

func (a *AuthServiceImpl) signIn(ctx context.Context, u *domain.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := a.TService.Issue(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &dto.AuthResponse{
		User:      dto.NewUserResponse(u),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func found(_ *domain.User, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (a *AuthServiceImpl) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.PasswordService.Hash(dummyPassword)
	})
	return a.dummyHash
}

func (a *AuthServiceImpl) publish(ctx context.Context, e events.Event) {
	if a.Events != nil {
		a.Events.Publish(ctx, e)
	}
}
