package impl

import "errors"

var (
	ErrEmptyPassword     = errors.New("empty password")
	ErrMalformedHash     = errors.New("malformed password hash")
	ErrMissingSigningKey = errors.New("missing signing key")
	ErrUsernameExhausted = errors.New("could not derive a free username")
)
