package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"booking-platform/pkg/utils"

	"go.uber.org/zap"
)

// Mailer sends plain text e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	config utils.EmailConfig
	log    *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer returns a mailer that only logs when no SMTP host is set.
func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) Mailer {
	return &smtpMailer{
		config: config,
		log:    log.With(zap.String("notify", "smtp")),
		send:   smtp.SendMail,
	}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("send %q: empty recipient", subject)
	}

	if m.config.Host == "" {
		m.log.Info("SMTP not configured, e-mail skipped",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	var auth smtp.Auth
	if m.config.User != "" {
		auth = smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	}

	if err := m.send(addr, auth, m.config.From, []string{to}, buildMessage(m.config.From, to, subject, body)); err != nil {
		m.log.Error("Failed to send e-mail", zap.Error(err), zap.String("to", to), zap.String("subject", subject))
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}

	m.log.Info("E-mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
