package main

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/pkg/mailer"
)

type outcome int

const (
	acked outcome = iota
	dropped
	requeued
)

type worker struct {
	Sender      mailer.Sender
	Logger      logrus.FieldLogger
	SendTimeout time.Duration
}

// handle delivers one queued job. Undecodable or unrenderable jobs are dropped,
// transport failures are requeued for another attempt.
func (w *worker) handle(ctx context.Context, d amqp.Delivery) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job, dropping")
		_ = d.Nack(false, false)
		return dropped
	}
	log := w.Logger.WithFields(logrus.Fields{"template": job.Template, "redelivered": d.Redelivered})

	msg, err := job.Message()
	if err != nil {
		log.WithError(err).Warn("email job cannot be rendered, dropping")
		_ = d.Nack(false, false)
		return dropped
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, msg); err != nil {
		log.WithError(err).Error("send failed, requeueing")
		_ = d.Nack(false, true)
		return requeued
	}
	_ = d.Ack(false)
	log.Info("email sent")
	return acked
}

// run consumes until deliveries closes or ctx is done.
func (w *worker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.handle(ctx, d)
		}
	}
}
