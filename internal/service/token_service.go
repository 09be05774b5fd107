package service

import (
	"context"
	"time"

	"authflow/internal/domain"
)

type TokenService interface {
	Issue(ctx context.Context, userID domain.UserID) (token string, expiresAt time.Time, err error)
	Verify(ctx context.Context, token string) (domain.UserID, error)
}
