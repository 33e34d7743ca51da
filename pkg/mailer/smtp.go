package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTP sends mail through an authenticated SMTP relay. Port 465 uses
// implicit TLS; other ports upgrade with STARTTLS when offered.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	dial func(d *gomail.Dialer, m ...*gomail.Message) error
}

func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{Host: host, Port: port, Username: username, Password: password, From: from}
}

func (s *SMTP) dialer() *gomail.Dialer {
	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	d.SSL = s.Port == 465
	d.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	return d
}

func (s *SMTP) message(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	send := s.dial
	if send == nil {
		send = func(d *gomail.Dialer, m ...*gomail.Message) error { return d.DialAndSend(m...) }
	}
	if err := send(s.dialer(), s.message(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
