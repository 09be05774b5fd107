package impl

import (
	"context"
	"errors"
	"time"

	"authflow/internal/domain"
	"authflow/internal/observability/middleware"
	"authflow/internal/store"

	"github.com/google/uuid"
)

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

// CodeStore is satisfied by both the gorm OTP store and the Redis backend.
type CodeStore interface {
	Replace(ctx context.Context, code *domain.OneTimeCode) error
	Find(ctx context.Context, email, codeHash string) (*domain.OneTimeCode, error)
	DeleteByEmail(ctx context.Context, email string) error
}

var (
	_ userStore = (*store.UserStore)(nil)
	_ CodeStore = (*store.OTPStore)(nil)
)

func isNotFound(err error) bool { return errors.Is(err, store.ErrRecordNotFound) }

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// withIDs appends the request correlation ids of ctx to kv.
func withIDs(ctx context.Context, kv ...any) []any {
	return append(kv, middleware.LogAttrs(ctx)...)
}
