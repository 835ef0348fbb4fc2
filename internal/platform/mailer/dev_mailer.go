package mailer

import (
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

// DevMailer logs what would have been sent.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev-mail", nil
}
