package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flappion-backend/config"
	"flappion-backend/controllers"
	"flappion-backend/mailer"
	"flappion-backend/mq"
	"flappion-backend/routes"
	"flappion-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Printf("✅ Database connection established (%s) and migrations applied.", cfg.DBDriver)

	clock := services.SystemClock()
	m := mailer.New(mailer.Options{
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
	})
	log.Printf("✅ Mailer: %s", m.Provider())

	// Initialize services
	accountService := services.NewAccountService(db)
	sessionService := services.NewSessionService(db, accountService, cfg.JWTSecret, cfg.SessionTTL, clock)
	notificationService := services.NewNotificationService(db, m, cfg.MailFrom, cfg.AdminNotifyEmail, clock)
	invitationService := services.NewInvitationService(db, accountService, notificationService, clock, cfg.InvitationTTL, cfg.FrontendURL)

	var notifier services.BookingNotifier = notificationService
	var pub *mq.Publisher
	if strings.EqualFold(cfg.NotifyMode, config.NotifyQueue) {
		pub, err = mq.NewPublisher(cfg.RabbitURL, cfg.NotifyTopology())
		if err != nil {
			log.Fatalf("❌ RabbitMQ publisher: %v", err)
		}
		// sends in-request while the broker is unreachable
		notifier = &services.FallbackNotifier{
			Primary:  &services.QueueNotifier{Publisher: pub},
			Fallback: notificationService,
		}
		log.Printf("✅ Booking notifications queued on %s -> %s", cfg.NotifyExchange, cfg.NotifyQueue)
	}
	bookingService := services.NewBookingService(db, notifier)

	// Build router
	router := routes.SetupRouter(routes.Controllers{
		Bookings:    controllers.NewBookingController(bookingService, notificationService),
		Invitations: controllers.NewInvitationController(invitationService),
		Auth:        controllers.NewAuthController(sessionService),
	}, sessionService, cfg.CORSOrigins)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	} else {
		log.Println("✅ Server stopped gracefully")
	}

	if pub != nil {
		if err := pub.Close(); err != nil {
			log.Printf("⚠️  RabbitMQ publisher close: %v", err)
		}
	}
}
