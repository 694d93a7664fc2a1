package channel

import (
	"context"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/mail"
)

// Email sends the code as a plain-text message.
type Email struct {
	mail mail.Mail
}

func NewEmail(m mail.Mail) *Email {
	return &Email{mail: m}
}

func (e *Email) Send(ctx context.Context, to entity.Recipient, code string) error {
	return e.mail.Send(ctx, mail.Message{
		To:       []string{to.Email},
		Subject:  emailSubject,
		TextBody: "Code: " + code,
	})
}
