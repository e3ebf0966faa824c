package auth

import (
	"context"
	"log"
)

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

// LogMailer writes the link to the log instead of sending mail.
type LogMailer struct {
	Logger *log.Logger
}

func (m LogMailer) SendVerification(_ context.Context, email, link string) error {
	logger := m.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[Auth] verification link email=%s link=%s", email, link)
	return nil
}
