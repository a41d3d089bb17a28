package email

import (
	"context"
	"errors"
)

const verificationSubject = "Verify your email"

// Sender define la interfaz para envio de correos de verificacion.
type Sender interface {
	SendVerificationLink(ctx context.Context, toEmail, link string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationLink(_ context.Context, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
