package impl

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2idName = "argon2id"

type Argon2Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// PasswordServiceImpl hashes with argon2id and encodes the result in the
// PHC string format, so parameters travel with the hash. Legacy bcrypt
// hashes still verify and are flagged for rehash.
type PasswordServiceImpl struct {
	cur Argon2Params
}

func NewPasswordServiceArgon2id() *PasswordServiceImpl {
	return NewPasswordServiceWithParams(Argon2Params{
		Time:    3,
		Memory:  64 * 1024, // 64 MiB
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	})
}

func NewPasswordServiceWithParams(p Argon2Params) *PasswordServiceImpl {
	return &PasswordServiceImpl{cur: p}
}

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, p.cur.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.cur.Time, p.cur.Memory, p.cur.Threads, p.cur.KeyLen)
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idName, argon2.Version,
		p.cur.Memory, p.cur.Time, p.cur.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (p *PasswordServiceImpl) Verify(password, encoded string) (rehashNeeded bool, ok bool) {
	switch {
	case encoded == "" || password == "":
		return false, false
	case isBcrypt(encoded):
		if bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) != nil {
			return false, false
		}
		return true, true
	}

	stored, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false, false
	}
	calculated := argon2.IDKey([]byte(password), salt, stored.Time, stored.Memory, stored.Threads, stored.KeyLen)
	ok = subtle.ConstantTimeCompare(calculated, key) == 1

	// Rehash if policy changed
	rehashNeeded = ok && (stored.Time != p.cur.Time ||
		stored.Memory != p.cur.Memory ||
		stored.Threads != p.cur.Threads ||
		stored.KeyLen != p.cur.KeyLen ||
		stored.SaltLen != p.cur.SaltLen)

	return rehashNeeded, ok
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != argon2idName {
		return Argon2Params{}, nil, nil, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2Params{}, nil, nil, ErrMalformedHash
	}
	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Argon2Params{}, nil, nil, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Argon2Params{}, nil, nil, ErrMalformedHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
