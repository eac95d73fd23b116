package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/infrastructure/config"
)

func testEmail() notification.Email {
	return notification.Email{
		RecipientName:  "Ada Lovelace",
		RecipientEmail: "ada@example.org",
		Subject:        "New samples added to project",
		Body:           "line one\nline two",
	}
}

func TestSMTPSender_Send(t *testing.T) {
	s, err := NewSMTPSender(config.MailConfig{Host: "smtp.example.org", Port: 587, Username: "u", Password: "p", From: "dm@example.org"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.NotNil(t, a)
		assert.Equal(t, "dm@example.org", from)
		return nil
	}

	require.NoError(t, s.Send(context.Background(), testEmail()))
	assert.Equal(t, "smtp.example.org:587", gotAddr)
	assert.Equal(t, []string{"ada@example.org"}, gotTo)
	assert.Contains(t, gotMsg, "To: Ada Lovelace <ada@example.org>\r\n")
	assert.Contains(t, gotMsg, "Subject: New samples added to project\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nline one\r\nline two"))
}

func TestSMTPSender_Errors(t *testing.T) {
	_, err := NewSMTPSender(config.MailConfig{From: "dm@example.org"})
	assert.Error(t, err)

	s, err := NewSMTPSender(config.MailConfig{Host: "localhost", Port: 25, From: "dm@example.org"})
	require.NoError(t, err)
	assert.Nil(t, s.auth)

	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	err = s.Send(context.Background(), testEmail())
	assert.ErrorContains(t, err, "refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, testEmail()), context.Canceled)
}

func TestBuildMessage_EncodesNonASCII(t *testing.T) {
	email := testEmail()
	email.Subject = "Proben für Projekt"
	msg := string(buildMessage("dm@example.org", email, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.Contains(t, msg, "Subject: =?utf-8?q?Proben_f=C3=BCr_Projekt?=\r\n")
	assert.Contains(t, msg, "Date: Wed, 01 May 2024 10:00:00 +0000\r\n")
}

func TestNewSender(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sender, err := NewSender(config.MailConfig{}, zap.New(core))
	require.NoError(t, err)
	require.IsType(t, &LoggingSender{}, sender)

	require.NoError(t, sender.Send(context.Background(), testEmail()))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ada@example.org", logs.All()[0].ContextMap()["recipient"])

	sender, err = NewSender(config.MailConfig{Enabled: true, Host: "smtp.example.org", Port: 25, From: "dm@example.org"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)
}
