// Package mail delivers notification emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/infrastructure/config"
)

// SMTPSender sends emails through an SMTP relay using STARTTLS when the
// server offers it
type SMTPSender struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a sender for the configured relay
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail sender address is required")
	}
	s := &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

// Send delivers the email. net/smtp has no context support, so ctx is
// only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, email notification.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, email, time.Now())
	if err := s.sendMail(s.addr, s.auth, s.from, []string{email.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.RecipientEmail, err)
	}
	return nil
}

func buildMessage(from string, email notification.Email, now time.Time) []byte {
	to := email.RecipientEmail
	if email.RecipientName != "" {
		to = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", email.RecipientName), email.RecipientEmail)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(email.Body, "\r\n", "\n"), "\n", "\r\n"))
	return buf.Bytes()
}

// LoggingSender writes emails to the log instead of sending them. It is
// used when no relay is configured.
type LoggingSender struct {
	logger *zap.Logger
}

// NewLoggingSender creates a LoggingSender
func NewLoggingSender(logger *zap.Logger) *LoggingSender {
	return &LoggingSender{logger: logger}
}

// Send logs the email
func (s *LoggingSender) Send(_ context.Context, email notification.Email) error {
	s.logger.Info("Email not sent, mail delivery disabled",
		zap.String("recipient", email.RecipientEmail),
		zap.String("subject", email.Subject),
	)
	return nil
}

// NewSender returns an SMTP sender when mail is enabled, otherwise a
// LoggingSender
func NewSender(cfg config.MailConfig, logger *zap.Logger) (notification.Sender, error) {
	if !cfg.Enabled {
		return NewLoggingSender(logger), nil
	}
	return NewSMTPSender(cfg)
}

var (
	_ notification.Sender = (*SMTPSender)(nil)
	_ notification.Sender = (*LoggingSender)(nil)
)
