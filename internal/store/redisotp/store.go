// Package redisotp keeps password reset codes in Redis. Each email has at
// most one outstanding code, stored under a key that expires with the
// code's validity window, so no purge loop is needed.
package redisotp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"authflow/internal/domain"
	"authflow/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp"

var ErrUnavailable = errors.New("otp redis unavailable")

type record struct {
	ID        string    `json:"id"`
	CodeHash  string    `json:"codeHash"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New returns a store whose keys live for ttl, normally the code validity window.
func New(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{redis: client, prefix: keyPrefix, ttl: ttl}
}

func (s *Store) key(email string) string { return s.prefix + ":" + email }

// Replace overwrites whatever code the email had.
func (s *Store) Replace(ctx context.Context, code *domain.OneTimeCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(record{
		ID:        code.ID.String(),
		CodeHash:  code.CodeHash,
		CreatedAt: code.CreatedAt,
	})
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(code.Email), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, email, codeHash string) (*domain.OneTimeCode, error) {
	data, err := s.redis.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode otp record: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(codeHash)) != 1 {
		return nil, store.ErrRecordNotFound
	}
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("decode otp record: %w", err)
	}
	return &domain.OneTimeCode{
		ID:        id,
		Email:     email,
		CodeHash:  rec.CodeHash,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *Store) DeleteByEmail(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
