package service

import "context"

type EmailService interface {
	SendPasswordResetCode(ctx context.Context, to string, code string) error
}

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
