package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/logger"
)

const smtpDialTimeout = 30 * time.Second

// SMTPSender delivers mail over plain SMTP with STARTTLS or implicit
// SSL, matching the lab's existing relay setup.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger logger.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, log logger.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"provider": "smtp"}),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("smtp credentials not configured")
	}
	if msg.From == "" {
		msg.From = s.cfg.From
	}
	if err := validateMessage(msg); err != nil {
		return err
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	client, err := s.connect(ctx, addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer client.Quit()

	if !s.cfg.UseSSL && s.cfg.UseStartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	s.logger.Info("email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

func (s *SMTPSender) connect(ctx context.Context, addr string) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: smtpDialTimeout}

	if s.cfg.UseSSL {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.cfg.Host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, s.cfg.Host)
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return smtp.NewClient(conn, s.cfg.Host)
}
