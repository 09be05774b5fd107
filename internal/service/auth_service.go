package service

import (
	"context"

	"authflow/internal/domain"
	"authflow/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, r dto.LoginRequest) (*dto.AuthResponse, error)
	GoogleSignIn(ctx context.Context, r dto.GoogleSignInRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID domain.UserID) (*dto.MeResponse, error)
}
