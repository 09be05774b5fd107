package service

import (
	"context"

	"authflow/internal/dto"
)

type PasswordResetService interface {
	ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error)
	ValidateOTP(ctx context.Context, r dto.ValidateOTPRequest) (*dto.ValidateOTPResponse, error)
	ResetPassword(ctx context.Context, r dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error)
}
