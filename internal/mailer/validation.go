package mailer

import (
	"fmt"
	"strings"
)

func validateMessage(msg *Message) error {
	if msg.From == "" {
		return fmt.Errorf("no sender address provided")
	}
	if !isValidEmail(msg.From) {
		return fmt.Errorf("invalid 'from' email address: %s", msg.From)
	}

	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients provided")
	}
	for _, addr := range msg.To {
		if !isValidEmail(addr) {
			return fmt.Errorf("invalid 'to' email address: %s", addr)
		}
	}

	return nil
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}
