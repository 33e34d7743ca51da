package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-task-tracker/config"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
	"github.com/oksasatya/go-task-tracker/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	sender, err := deliverySender(cfg)
	if err != nil {
		logger.WithError(err).Fatal("mail transport not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("amqp consumer")
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries("")
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := &worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
	done := make(chan struct{})
	go func() {
		w.run(ctx, deliveries)
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case <-done:
		logger.Warn("delivery channel closed")
		return
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// deliverySender picks the real transport the worker hands jobs to. The queue
// itself is never a valid target here.
func deliverySender(cfg *config.Config) (mailer.Sender, error) {
	switch {
	case cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "":
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), nil
	case cfg.SMTPHost != "" && cfg.SMTPEmail != "" && cfg.SMTPPassword != "":
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.SenderAddress()), nil
	default:
		return nil, errors.New("set MAILGUN_DOMAIN/MAILGUN_API_KEY/MAILGUN_SENDER or SMTP_HOST/SMTP_EMAIL/SMTP_PASSWORD")
	}
}
