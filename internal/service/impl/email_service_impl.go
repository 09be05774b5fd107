package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"authflow/internal/service"

	"github.com/wneessen/go-mail"
)

const resetSubject = "Your password reset code"

type EmailServiceImpl struct {
	mailer service.Mailer
	ttl    time.Duration
}

// NewEmailService renders reset messages and hands them to mailer. ttl is
// quoted in the message body.
func NewEmailService(mailer service.Mailer, ttl time.Duration) *EmailServiceImpl {
	return &EmailServiceImpl{mailer: mailer, ttl: ttl}
}

func (e *EmailServiceImpl) SendPasswordResetCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(
		"Your password reset code is %s.\n\nIt expires in %d minutes. If you did not ask to reset your password, ignore this message.\n",
		code, int(e.ttl.Minutes()),
	)
	if err := e.mailer.Send(ctx, to, resetSubject, body); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers through an SMTP relay, one connection per message.
type SMTPMailer struct {
	cfg     SMTPConfig
	options []mail.Option
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return &SMTPMailer{cfg: cfg, options: opts}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := buildMessage(m.cfg.From, to, subject, body)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.cfg.Host, m.options...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	slog.InfoContext(ctx, "email sent", withIDs(ctx, "to", to, "subject", subject)...)
	return nil
}

func buildMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// LogMailer logs messages instead of sending them. Bodies are omitted since
// they carry reset codes.
type LogMailer struct {
	Logger *slog.Logger
}

func (l LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email suppressed", withIDs(ctx, "to", to, "subject", subject)...)
	return nil
}
