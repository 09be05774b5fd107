package impl

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (r *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestEmailServiceRendersResetCode(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEmailService(mailer, 5*time.Minute)

	require.NoError(t, svc.SendPasswordResetCode(context.Background(), "bob@example.com", "482913"))
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "bob@example.com", mailer.sent[0].to)
	require.Equal(t, resetSubject, mailer.sent[0].subject)
	require.Contains(t, mailer.sent[0].body, "482913")
	require.Contains(t, mailer.sent[0].body, "5 minutes")
}

func TestEmailServicePropagatesFailure(t *testing.T) {
	boom := errors.New("relay down")
	svc := NewEmailService(&recordingMailer{err: boom}, 5*time.Minute)
	require.ErrorIs(t, svc.SendPasswordResetCode(context.Background(), "bob@example.com", "123456"), boom)
}

func TestLogMailerOmitsBody(t *testing.T) {
	var buf bytes.Buffer
	m := LogMailer{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, m.Send(context.Background(), "bob@example.com", "subject", "code 654321"))
	require.True(t, strings.Contains(buf.String(), "bob@example.com"))
	require.False(t, strings.Contains(buf.String(), "654321"))
}

func TestBuildMessageRejectsBadAddress(t *testing.T) {
	_, err := buildMessage("not an address", "bob@example.com", "s", "b")
	require.Error(t, err)

	msg, err := buildMessage("noreply@example.com", "bob@example.com", "s", "b")
	require.NoError(t, err)
	to := msg.GetTo()
	require.Len(t, to, 1)
	require.Equal(t, "bob@example.com", to[0].Address)
}
