package http

import (
	"errors"
	"log/slog"
	"net/http"

	"authflow/internal/domain"
	"authflow/internal/dto"
	obsmw "authflow/internal/observability/middleware"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrDuplicateIdentity, http.StatusConflict, "duplicate_identity", "already exists"},
	{domain.ErrInvalidFormat, http.StatusBadRequest, "invalid_format", "invalid input"},
	{domain.ErrInvalidEmail, http.StatusBadRequest, "invalid_email", "a valid email is required"},
	{domain.ErrWeakPassword, http.StatusBadRequest, "weak_password", "password is too weak"},
	{domain.ErrMissingField, http.StatusBadRequest, "missing_field", "a required field is missing"},
	{domain.ErrPasswordMismatch, http.StatusBadRequest, "password_mismatch", "passwords do not match"},
	{domain.ErrInvalidOrExpiredOTP, http.StatusBadRequest, "invalid_or_expired_otp", "invalid or expired code"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid email or password"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "authentication required"},
	{domain.ErrOAuthVerificationFailed, http.StatusUnauthorized, "oauth_verification_failed", "google sign-in could not be verified"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
}

// writeError maps err onto a status and an ErrorResponse. Unknown errors
// are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.ErrorResponse{Error: m.code, Message: m.message}
		var fe *domain.FieldError
		var dup *domain.DuplicateIdentityError
		switch {
		case errors.As(err, &dup):
			body.Field = dup.Field
			body.Message = dup.Error()
		case errors.As(err, &fe):
			body.Field = fe.Field
			if fe.Reason != "" {
				body.Message = fe.Reason
			}
		}
		writeJSON(w, m.status, body)
		return
	}

	slog.ErrorContext(r.Context(), "request failed",
		append([]any{"path", r.URL.Path, "error", err}, obsmw.LogAttrs(r.Context())...)...)
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal", Message: "internal error"})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request", Message: message})
}
