// Package mailer notifies users about their library by email.
package mailer

import (
	"context"
	"fmt"

	"github.com/obelow/aria/internal/logger"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// UploadErrorBody renders the notification sent when an upload fails for a
// system reason. Expected cancellations do not email the user.
func UploadErrorBody(fileName string) (subject, body string) {
	subject = "There was an error uploading your song"
	body = fmt.Sprintf(
		"Something went wrong when processing \"%s\". Don't worry though, our team has been notified and will be looking into it.",
		fileName)
	return subject, body
}

// LogMailer writes mail to the log instead of sending it. Stands in until an
// outbound mail provider is configured.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log.WithComponent("mailer")}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info("would send email", "to", to, "subject", subject, "body", body)
	return nil
}
