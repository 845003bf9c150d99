package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/logger"
)

// SESSender delivers mail through AWS SES. Attachments require the raw
// API, so the same MIME assembly as SMTP is used.
type SESSender struct {
	client *ses.Client
	from   string
	logger logger.Logger
}

func NewSESSender(ctx context.Context, cfg config.SESConfig, log logger.Logger) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.FromEmail,
		logger: log.WithFields(map[string]interface{}{"provider": "ses"}),
	}, nil
}

func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	if msg.From == "" {
		msg.From = s.from
	}
	if err := validateMessage(msg); err != nil {
		return err
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return err
	}

	_, err = s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Source:       aws.String(msg.From),
		Destinations: msg.To,
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	s.logger.Info("email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
