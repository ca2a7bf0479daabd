package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/agro-storefront/internal/config"
	"github.com/example/agro-storefront/internal/email"
	"github.com/example/agro-storefront/internal/infrastructure/kafka"
	"github.com/example/agro-storefront/internal/logging"
	"github.com/example/agro-storefront/internal/notification"
)

// Dedicated consumer group for receipt emails
const consumerGroup = "receipt-notifier"

func main() {
	cfg := config.LoadNotifier()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.New("Notifier")

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS environment variable is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().
		Strs("kafka", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaTopic).
		Str("group", consumerGroup).
		Str("smtp", cfg.SMTPHost+":"+cfg.SMTPPort).
		Str("from", cfg.SMTPFrom).
		Msg("AgroConnect receipt notifier starting")

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, logging.New("Notification"))

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup, logging.New("Kafka"))
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().Msg("starting event consumer")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("consumer error")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	log.Info().Msg("shutting down")
	cancel()
	<-done
}
