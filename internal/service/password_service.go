package service

type PasswordService interface {
	Hash(password string) (encoded string, err error)
	// Verify reports whether password matches encoded, and whether encoded
	// should be replaced by a fresh Hash because the policy moved on.
	Verify(password, encoded string) (rehashNeeded bool, ok bool)
}
