package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authflow/internal/domain"
	"authflow/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	registerErr error
	loginErr    error
	googleErr   error
	meErr       error
	lastMeID    domain.UserID
}

func (f *fakeAuth) Register(_ context.Context, r dto.RegisterRequest) (*dto.AuthResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &dto.AuthResponse{User: dto.UserResponse{ID: uuid.NewString(), Username: r.Username, Email: r.Email}, Token: "tok"}, nil
}

func (f *fakeAuth) Login(_ context.Context, r dto.LoginRequest) (*dto.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.AuthResponse{User: dto.UserResponse{Email: r.Email}, Token: "tok"}, nil
}

func (f *fakeAuth) GoogleSignIn(_ context.Context, r dto.GoogleSignInRequest) (*dto.AuthResponse, error) {
	if f.googleErr != nil {
		return nil, f.googleErr
	}
	return &dto.AuthResponse{Token: "google-" + r.Credential}, nil
}

func (f *fakeAuth) Me(_ context.Context, id domain.UserID) (*dto.MeResponse, error) {
	f.lastMeID = id
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &dto.MeResponse{User: dto.UserResponse{ID: id.String()}}, nil
}

type fakeReset struct {
	err error
}

func (f *fakeReset) ForgotPassword(context.Context, dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ForgotPasswordResponse{Accepted: true, Message: "sent"}, nil
}

func (f *fakeReset) ValidateOTP(context.Context, dto.ValidateOTPRequest) (*dto.ValidateOTPResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ValidateOTPResponse{Valid: true}, nil
}

func (f *fakeReset) ResetPassword(context.Context, dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ResetPasswordResponse{Success: true}, nil
}

type fakeTokens struct {
	valid  string
	userID domain.UserID
}

func (f fakeTokens) Issue(context.Context, domain.UserID) (string, time.Time, error) {
	return f.valid, time.Now(), nil
}

func (f fakeTokens) Verify(_ context.Context, token string) (domain.UserID, error) {
	if token != f.valid {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return f.userID, nil
}

func newTestRouter(auth *fakeAuth, reset *fakeReset, tokens fakeTokens) http.Handler {
	return NewRouter(RouterConfig{
		Auth:    auth,
		Reset:   reset,
		Tokens:  tokens,
		Metrics: http.NotFoundHandler(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterReturnsCreated(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeReset{}, fakeTokens{})

	rec := do(t, h, http.MethodPost, "/api/auth/register", `{"username":"alice","email":"a@example.com","password":"abc123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "alice", body.User.Username)
	require.Equal(t, "tok", body.Token)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"duplicate", &domain.DuplicateIdentityError{Field: domain.FieldEmail}, http.StatusConflict, "duplicate_identity", "email"},
		{"format", domain.NewFieldError(domain.ErrInvalidFormat, domain.FieldUsername, "bad username"), http.StatusBadRequest, "invalid_format", "username"},
		{"weak", domain.NewFieldError(domain.ErrWeakPassword, domain.FieldPassword, "too short"), http.StatusBadRequest, "weak_password", "password"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", ""},
		{"oauth", domain.ErrOAuthVerificationFailed, http.StatusUnauthorized, "oauth_verification_failed", ""},
		{"internal", errors.New("db exploded"), http.StatusInternalServerError, "internal", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&fakeAuth{registerErr: tc.err}, &fakeReset{}, fakeTokens{})
			rec := do(t, h, http.MethodPost, "/api/auth/register", `{}`, nil)
			require.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			require.Equal(t, tc.code, body.Error)
			require.Equal(t, tc.field, body.Field)
			require.NotContains(t, body.Message, "db exploded")
		})
	}
}

func TestResetErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrInvalidOrExpiredOTP, http.StatusBadRequest},
		{domain.ErrPasswordMismatch, http.StatusBadRequest},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.NewFieldError(domain.ErrMissingField, domain.FieldConfirmPassword, ""), http.StatusBadRequest},
		{domain.NewFieldError(domain.ErrInvalidEmail, domain.FieldEmail, ""), http.StatusBadRequest},
	}
	for _, tc := range cases {
		h := newTestRouter(&fakeAuth{}, &fakeReset{err: tc.err}, fakeTokens{})
		rec := do(t, h, http.MethodPost, "/api/auth/reset-password", `{"email":"a@example.com"}`, nil)
		require.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestMalformedBody(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeReset{}, fakeTokens{})
	rec := do(t, h, http.MethodPost, "/api/auth/login", `{"email":`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "bad_request", decodeError(t, rec).Error)
}

func TestResetFlowRoutes(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeReset{}, fakeTokens{})

	rec := do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"a@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"accepted":true,"message":"sent"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/auth/validate-otp", `{"email":"a@example.com","otp":"123456"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/auth/reset-password", `{"email":"a@example.com","otp":"123456","newPassword":"abc123","confirmPassword":"abc123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestMeRequiresSession(t *testing.T) {
	userID := uuid.New()
	auth := &fakeAuth{}
	h := newTestRouter(auth, &fakeReset{}, fakeTokens{valid: "good", userID: userID})

	rec := do(t, h, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthorized", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer bad"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, auth.lastMeID)

	auth.meErr = domain.ErrUnauthorized
	rec = do(t, h, http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeReset{}, fakeTokens{})

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/auth/login", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	h := NewRouter(RouterConfig{
		Auth:               &fakeAuth{},
		Reset:              &fakeReset{},
		Tokens:             fakeTokens{},
		RateLimitPerMinute: 2,
		Metrics:            http.NotFoundHandler(),
	})
	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/healthz", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
