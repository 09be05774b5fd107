package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat           = errors.New("invalid format")
	ErrInvalidEmail            = errors.New("invalid email")
	ErrWeakPassword            = errors.New("weak password")
	ErrMissingField            = errors.New("missing field")
	ErrDuplicateIdentity       = errors.New("duplicate identity")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidOrExpiredOTP     = errors.New("invalid or expired otp")
	ErrPasswordMismatch        = errors.New("passwords do not match")
	ErrUserNotFound            = errors.New("user not found")
	ErrOAuthVerificationFailed = errors.New("oauth verification failed")
)

const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldCode            = "otp"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)

// FieldError ties a validation failure to the request field that caused it.
// Kind is one of ErrInvalidFormat, ErrInvalidEmail, ErrWeakPassword or
// ErrMissingField.
type FieldError struct {
	Kind   error
	Field  string
	Reason string
}

func NewFieldError(kind error, field, reason string) *FieldError {
	return &FieldError{Kind: kind, Field: field, Reason: reason}
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// DuplicateIdentityError is returned when a username or email is already
// taken. Field is set by the store from the violated unique constraint.
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateIdentityError) Is(target error) bool { return target == ErrDuplicateIdentity }
