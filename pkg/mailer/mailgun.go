package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
	// APIBase overrides the Mailgun endpoint, e.g. the EU region.
	APIBase string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send delivers msg via Mailgun. The HTML part is attached only when present.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	client := mg.NewMailgun(m.Domain, m.APIKey)
	if m.APIBase != "" {
		client.SetAPIBase(m.APIBase)
	}
	message := client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, message)
	return err
}
