package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"authflow/internal/domain"
	"authflow/internal/dto"
	"authflow/internal/events"
	"authflow/internal/observability/metrics"
	"authflow/internal/service"

	"github.com/google/uuid"
)

const (
	DefaultCodeTTL = 5 * time.Minute

	forgotPasswordAck = "If an account exists for this email, a reset code has been sent."
)

// PasswordResetServiceImpl runs the forgot-password, validate-code and
// reset-password steps.
type PasswordResetServiceImpl struct {
	Users           userStore
	Codes           CodeStore
	PasswordService service.PasswordService
	Email           service.EmailService
	Events          events.Sink
	CodeTTL         time.Duration
	Now             func() time.Time

	// ResponseFloor is the least time ForgotPassword spends before it
	// acknowledges, whether or not the account exists. Zero disables padding.
	ResponseFloor time.Duration
	Sleep         func(ctx context.Context, d time.Duration) error
}

func NewPasswordResetServiceImpl(
	users userStore,
	codes CodeStore,
	passwordService service.PasswordService,
	email service.EmailService,
	sink events.Sink,
	codeTTL time.Duration,
) *PasswordResetServiceImpl {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &PasswordResetServiceImpl{
		Users:           users,
		Codes:           codes,
		PasswordService: passwordService,
		Email:           email,
		Events:          sink,
		CodeTTL:         codeTTL,
		Now:             time.Now,
		Sleep:           sleepContext,
	}
}

// ForgotPassword answers every well-formed email with the same
// acknowledgment. A code is stored and mailed only when the account exists.
func (p *PasswordResetServiceImpl) ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest) (out *dto.ForgotPasswordResponse, err error) {
	defer func() {
		metrics.PasswordResetRequestsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	email, err := normalizeEmail(r.Email, domain.ErrInvalidEmail)
	if err != nil {
		return nil, err
	}
	start := clock(p.Now)
	ack := &dto.ForgotPasswordResponse{Accepted: true, Message: forgotPasswordAck}

	// generated before the lookup so both branches do the same work
	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	user, err := p.Users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			slog.InfoContext(ctx, "password reset for unknown email", withIDs(ctx, "email", email)...)
			if err := p.padResponse(ctx, start); err != nil {
				return nil, err
			}
			return ack, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := clock(p.Now)
	otp := &domain.OneTimeCode{
		ID:        uuid.New(),
		Email:     email,
		CodeHash:  hashCode(code),
		CreatedAt: now,
	}
	if err := p.Codes.Replace(ctx, otp); err != nil {
		return nil, fmt.Errorf("store reset code: %w", err)
	}
	if err := p.Email.SendPasswordResetCode(ctx, email, code); err != nil {
		return nil, err
	}

	p.publish(ctx, events.PasswordResetRequested{UserID: user.ID.String(), Email: email, At: now})
	slog.InfoContext(ctx, "password reset code issued", withIDs(ctx, "user_id", user.ID, "expires_at", otp.ExpiresAt(p.CodeTTL))...)
	if err := p.padResponse(ctx, start); err != nil {
		return nil, err
	}
	return ack, nil
}

// padResponse waits out whatever is left of ResponseFloor since start.
func (p *PasswordResetServiceImpl) padResponse(ctx context.Context, start time.Time) error {
	if p.ResponseFloor <= 0 {
		return nil
	}
	wait := p.ResponseFloor - clock(p.Now).Sub(start)
	if wait <= 0 {
		return nil
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, wait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ValidateOTP checks a code without consuming it.
func (p *PasswordResetServiceImpl) ValidateOTP(ctx context.Context, r dto.ValidateOTPRequest) (out *dto.ValidateOTPResponse, err error) {
	defer func() {
		metrics.OTPValidationsTotal.WithLabelValues("validate", metrics.Result(err)).Inc()
	}()

	if _, err := p.checkCode(ctx, r.Email, r.OTP); err != nil {
		return nil, err
	}
	return &dto.ValidateOTPResponse{Valid: true}, nil
}

func (p *PasswordResetServiceImpl) ResetPassword(ctx context.Context, r dto.ResetPasswordRequest) (out *dto.ResetPasswordResponse, err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	// 1) both password fields present
	if r.NewPassword == "" {
		return nil, domain.NewFieldError(domain.ErrMissingField, domain.FieldNewPassword, "new password is required")
	}
	if r.ConfirmPassword == "" {
		return nil, domain.NewFieldError(domain.ErrMissingField, domain.FieldConfirmPassword, "password confirmation is required")
	}

	// 2) code re-checked independently of any earlier ValidateOTP
	otp, err := p.checkCode(ctx, r.Email, r.OTP)
	metrics.OTPValidationsTotal.WithLabelValues("reset", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	// 3) new password
	if r.NewPassword != r.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if err := validatePassword(domain.FieldNewPassword, r.NewPassword); err != nil {
		return nil, err
	}

	// 4) owner of the code
	user, err := p.Users.GetByEmail(ctx, otp.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	hash, err := p.PasswordService.Hash(r.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := p.Users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update password: %w", err)
	}

	// 5) the code is spent; the password is already changed if this fails
	if err := p.Codes.DeleteByEmail(ctx, otp.Email); err != nil {
		slog.WarnContext(ctx, "reset code not deleted", withIDs(ctx, "user_id", user.ID, "error", err)...)
	}

	p.publish(ctx, events.PasswordChanged{UserID: user.ID.String(), Via: "reset", At: clock(p.Now)})
	slog.InfoContext(ctx, "password reset", withIDs(ctx, "user_id", user.ID)...)
	return &dto.ResetPasswordResponse{Success: true}, nil
}

// checkCode finds the stored code matching email and code and reports
// domain.ErrInvalidOrExpiredOTP unless it is inside the validity window.
func (p *PasswordResetServiceImpl) checkCode(ctx context.Context, email, code string) (*domain.OneTimeCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || !wellFormedCode(code) {
		return nil, domain.ErrInvalidOrExpiredOTP
	}

	otp, err := p.Codes.Find(ctx, email, hashCode(code))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrInvalidOrExpiredOTP
		}
		return nil, fmt.Errorf("load reset code: %w", err)
	}
	if !otp.ValidAt(clock(p.Now), p.CodeTTL) {
		return nil, domain.ErrInvalidOrExpiredOTP
	}
	return otp, nil
}

func (p *PasswordResetServiceImpl) publish(ctx context.Context, e events.Event) {
	if p.Events != nil {
		p.Events.Publish(ctx, e)
	}
}
