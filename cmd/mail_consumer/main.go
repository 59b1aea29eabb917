package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/env"
	"github.com/SeakMengs/AutoTermo/internal/mailer"
	"github.com/SeakMengs/AutoTermo/internal/queue"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/SeakMengs/AutoTermo/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV, "mail_consumer")
	defer logger.Sync()

	mail, err := mailer.NewClient(&cfg, logger)
	if err != nil {
		logger.Panic(err)
	}
	notifier := service.NewMailNotifier(mail, cfg.Termo.FrontendURL, logger)

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()
	logger.Infof("Connected to RabbitMQ at %s:%d", cfg.RabbitMQ.HOST, cfg.RabbitMQ.PORT)

	msgs, err := rabbitMQ.Consume(queue.QueueTermoReminder, MAX_WORKER)
	if err != nil {
		logger.Fatalf("Failed to consume reminder jobs: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing address will not fix itself, anything else is retried
	handler := func(ctx context.Context, job queue.ReminderJobPayload) (bool, error) {
		if err := notifier.NotifyPendingSignature(ctx, job.Reminder); err != nil {
			return job.Reminder.RecipientEmail != "", err
		}
		return false, nil
	}

	queue.NewReminderConsumer(rabbitMQ, handler, logger).Run(ctx, msgs, MAX_WORKER)
	logger.Infof("Started consuming reminder jobs with %d workers", MAX_WORKER)

	<-ctx.Done()
	logger.Info("Shutting down reminder consumer")
}
