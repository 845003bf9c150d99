// Package mailer delivers the complaint report to the lab and the
// customer, with the rendered PDF attached.
package mailer

import (
	"context"
	"fmt"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/logger"
)

// Message is one outbound mail with a single PDF attachment.
type Message struct {
	From           string
	To             []string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Sender delivers a message through a concrete provider.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// New selects the configured provider. "none" yields a nil Sender; the
// pipeline skips mail in that case.
func New(ctx context.Context, cfg config.MailConfig, log logger.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPSender(cfg.SMTP, log), nil
	case "ses":
		return NewSESSender(ctx, cfg.SES, log)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
