package mailer

import (
	"context"
	"fmt"
)

// Publisher is the part of helpers.RabbitPublisher the queue transport needs.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue hands messages to the email worker through RabbitMQ. A publish
// failure is reported as a send failure; delivery itself happens later.
type Queue struct {
	Pub Publisher
}

func NewQueue(pub Publisher) *Queue {
	return &Queue{Pub: pub}
}

func (q *Queue) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	job := EmailJob{To: msg.To, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML}
	if err := q.Pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
