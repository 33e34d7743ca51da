package mailer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("mailer: empty recipient")

// LogSender prints messages instead of delivering them. Used when no real
// transport is configured outside production.
type LogSender struct {
	Logger logrus.FieldLogger
}

func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	s.Logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Warn("mail mock: no transport configured, message not delivered")
	s.Logger.Debug(msg.Text)
	return nil
}
