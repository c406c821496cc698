// Command notifier delivers queued booking emails (NOTIFY_MODE=queue).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flappion-backend/config"
	"flappion-backend/mailer"
	"flappion-backend/mq"
	"flappion-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[notify] .env not found; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[notify] invalid configuration: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("[notify] database connect failed: %v", err)
	}

	m := mailer.New(mailer.Options{
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
	})
	notifications := services.NewNotificationService(db, m, cfg.MailFrom, cfg.AdminNotifyEmail, services.SystemClock())

	consumerCfg := mq.ConsumerConfig{
		RabbitURL:   cfg.RabbitURL,
		Topology:    cfg.NotifyTopology(),
		Prefetch:    8,
		ServiceName: "flappion-notifier",
	}
	cons := mq.NewConsumer(consumerCfg, services.BookingEventHandler(notifications))
	defer cons.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("[notify] started. queue=%s exchange=%s provider=%s",
		consumerCfg.Topology.Queue, consumerCfg.Topology.Exchange, m.Provider())
	for ctx.Err() == nil {
		if err := cons.Connect(); err != nil {
			log.Printf("[notify] connect failed: %v; retry in 2s", err)
			sleep(ctx, 2*time.Second)
			continue
		}
		err := cons.Run(ctx)
		cons.Close()
		if err == nil {
			break
		}
		log.Printf("[notify] run error: %v; reconnecting", err)
		sleep(ctx, time.Second)
	}
	log.Println("[notify] stopped")
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
