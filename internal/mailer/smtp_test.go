package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/logger"
)

func TestSMTPSendRequiresHost(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{}, logger.NewTestLogger(t))

	err := s.Send(context.Background(), &Message{
		From: "lab@example.com",
		To:   []string{"a@b.com"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host not configured")
}

func TestSMTPSendRequiresCredentials(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, logger.NewTestLogger(t))

	err := s.Send(context.Background(), &Message{
		From: "lab@example.com",
		To:   []string{"a@b.com"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestSMTPSendDefaultsFromAddress(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "lab@example.com",
		Password: "secret",
		From:     "bad address",
	}, logger.NewTestLogger(t))

	msg := &Message{To: []string{"a@b.com"}}
	err := s.Send(context.Background(), msg)

	// Validation runs before any network dial, so the invalid default
	// sender fails fast.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from")
	assert.Equal(t, "bad address", msg.From)
}
