package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendwise/internal/amqp"
	"spendwise/internal/config"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting notifier")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// Delivery is a structured log line. A push gateway would hang off
	// this handler.
	handler := func(ctx context.Context, msg *amqp.BillReminderMessage) error {
		logger.InfoContext(ctx, "Bill due soon",
			"bill_id", msg.BillID,
			"bill_name", msg.Name,
			"amount_cents", msg.AmountCents,
			"due_at", msg.DueAt.Format("2006-01-02"),
			"days_until_due", msg.DaysUntilDue)
		return nil
	}

	logger.Info("Consuming bill reminders",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	if err := amqp.ConsumeRemindersWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, handler); err != nil && ctx.Err() == nil {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Notifier shutdown complete")
}
