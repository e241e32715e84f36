package service

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"brandpulse/internal/platform/logger"
)

// SMTPConfig carries outbound mail settings. A blank Host disables
// delivery; exports still run and record history.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
	Timeout  time.Duration
}

// Mailer delivers a finished export file to its recipients
type Mailer interface {
	SendExport(ctx context.Context, recipients []string, exportName, format, fileName string, file []byte) error
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewMailer constructs an SMTP mailer
func NewMailer(cfg SMTPConfig) Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = "no-reply@brandpulse.local"
	}
	if cfg.FromName == "" {
		cfg.FromName = "BrandPulse"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &smtpMailer{cfg: cfg}
}

// SendExport mails the export as a multipart message with the file
// attached
func (m *smtpMailer) SendExport(ctx context.Context, recipients []string, exportName, format, fileName string, file []byte) error {
	log := logger.Named("export-mailer")
	if m.cfg.Host == "" {
		log.Info().
			Strs("recipients", recipients).
			Str("export", exportName).
			Msg("smtp not configured, skipping export email")
		return nil
	}

	msg := m.buildMessage(recipients, exportName, format, fileName, file)
	if err := m.send(ctx, recipients, msg); err != nil {
		return fmt.Errorf("send export email: %w", err)
	}
	log.Info().Strs("recipients", recipients).Str("file", fileName).Msg("export email sent")
	return nil
}

func (m *smtpMailer) buildMessage(recipients []string, exportName, format, fileName string, file []byte) string {
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	body := fmt.Sprintf(
		"Scheduled Export Ready\r\n\r\n"+
			"Your scheduled export %q has been generated.\r\n\r\n"+
			"Format: %s\r\nFile: %s\r\n\r\n"+
			"The export file is attached to this email.\r\n",
		exportName, strings.ToUpper(format), fileName,
	)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: [BrandPulse] Scheduled Export: %s\r\n", exportName))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString(fmt.Sprintf("Content-Type: application/octet-stream; name=%q\r\n", fileName))
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", fileName))
	msg.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(file)
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76])
		msg.WriteString("\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return msg.String()
}

func (m *smtpMailer) send(ctx context.Context, recipients []string, msg string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if m.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: m.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start tls: %w", err)
		}
	}

	if m.cfg.User != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// best effort; the message is already accepted
	_ = client.Quit()
	return nil
}
