package mailer

import (
	"fmt"

	mailtpl "github.com/oksasatya/go-task-tracker/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either the rendered parts are set, or Template and Data are, in which case
// the worker renders before sending.
type EmailJob struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject,omitempty"`
	Text     string            `json:"text,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Template string            `json:"template,omitempty"` // e.g. "reset_password"
	Data     mailtpl.EmailData `json:"data"`
}

// Message resolves the job into a deliverable message.
func (j EmailJob) Message() (Message, error) {
	if j.To == "" {
		return Message{}, ErrNoRecipient
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return Message{}, fmt.Errorf("email job for %s has no content", j.To)
		}
		return Message{To: j.To, Subject: j.Subject, Text: j.Text, HTML: j.HTML}, nil
	}
	subject, text, html, err := mailtpl.Render(j.Template, j.Data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: j.To, Subject: subject, Text: text, HTML: html}, nil
}
