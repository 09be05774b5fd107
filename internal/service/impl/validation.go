package impl

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"authflow/internal/domain"
)

const (
	maxEmailLength    = 100
	minPasswordLength = 6
	maxPasswordLength = 128
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// sanitize trims v and refuses values that open with a query operator.
func sanitize(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "$") || strings.HasPrefix(v, "{") {
		return "", domain.NewFieldError(domain.ErrInvalidFormat, field, "contains forbidden characters")
	}
	return v, nil
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return domain.NewFieldError(domain.ErrInvalidFormat, domain.FieldUsername,
			"username must be 3-20 characters of letters, digits or underscore")
	}
	return nil
}

// normalizeEmail sanitizes and lower-cases email. A malformed address is
// reported as kind, which differs between flows.
func normalizeEmail(email string, kind error) (string, error) {
	email, err := sanitize(domain.FieldEmail, email)
	if err != nil {
		return "", domain.NewFieldError(kind, domain.FieldEmail, "contains forbidden characters")
	}
	email = strings.ToLower(email)
	if email == "" || len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return "", domain.NewFieldError(kind, domain.FieldEmail, "a valid email of at most 100 characters is required")
	}
	return email, nil
}

func validatePassword(field, password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return domain.NewFieldError(domain.ErrWeakPassword, field, "password must be 6-128 characters")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return domain.NewFieldError(domain.ErrWeakPassword, field, "password must contain a letter and a digit")
	}
	return nil
}
