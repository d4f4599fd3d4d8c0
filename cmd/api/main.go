package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadgram/leadgram/internal/infra/database"
	"github.com/leadgram/leadgram/internal/infra/http/handlers"
	"github.com/leadgram/leadgram/internal/infra/http/middleware"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
	"github.com/leadgram/leadgram/internal/infra/mail"
	"github.com/leadgram/leadgram/internal/infra/queue"
	"github.com/leadgram/leadgram/internal/infra/worker"
	"github.com/leadgram/leadgram/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		getenv("RABBITMQ_USER", "guest"),
		getenv("RABBITMQ_PASS", "guest"),
		getenv("RABBITMQ_HOST", "localhost"),
		getenv("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	botRepo := database.NewBotRepository(db)
	channelRepo := database.NewChannelRepository(db)
	leadRepo := database.NewLeadRepository(db)
	eventRepo := database.NewEventRepository(db)
	msgRepo := database.NewScheduledMessageRepository(db)
	welcomeRepo := database.NewWelcomeQueueRepository(db)

	// 2. Integrations and adapters
	telegramClient := telegram.NewClient()
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	var alerts usecase.AlertService
	if os.Getenv("MAIL_HOST") != "" {
		alerts = mail.NewAlertSender(
			os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			getenv("MAIL_FROM", "alerts@leadgram.app"), os.Getenv("ALERT_EMAIL"),
		)
	}

	// 3. UseCases
	welcomeUC := usecase.NewSendWelcomeUseCase(channelRepo, botRepo, leadRepo, eventRepo, welcomeRepo, telegramClient)
	ingestUC := usecase.NewIngestUpdateUseCase(channelRepo, botRepo, leadRepo, eventRepo, welcomeRepo, producer, telegramClient, welcomeUC)
	processUC := usecase.NewProcessScheduledMessagesUseCase(msgRepo, channelRepo, botRepo, eventRepo, telegramClient, alerts)
	sweepUC := usecase.NewProcessWelcomeQueueUseCase(welcomeRepo, welcomeUC)
	scheduleUC := usecase.NewScheduleMessageUseCase(msgRepo, botRepo, channelRepo)
	trackUC := usecase.NewTrackEventUseCase(channelRepo, botRepo, leadRepo, eventRepo)

	// 4. Workers (broker consumer plus the recovery sweep)
	queueWorker := queue.NewWorker(rabbitMQ.Ch, welcomeUC)
	go queueWorker.Start(queue.QueueName)

	sweepWorker := worker.NewWelcomeSweepWorker(sweepUC)
	go sweepWorker.Start(context.Background())

	// 5. Handlers
	webhookHandler := handlers.NewWebhookHandler(ingestUC)
	cronHandler := handlers.NewCronHandler(processUC, sweepUC, os.Getenv("CRON_SECRET"))
	trackingHandler := handlers.NewTrackingHandler(trackUC)
	scheduleHandler := handlers.NewScheduleHandler(scheduleUC, msgRepo)
	botHandler := handlers.NewBotHandler(botRepo, telegramClient)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/telegram/webhook", webhookHandler.Handle)
	// External schedulers mostly fire GET; POST kept for manual triggering.
	r.Get("/api/cron/process-messages", cronHandler.Handle)
	r.Post("/api/cron/process-messages", cronHandler.Handle)
	r.Post("/api/tracking/event", trackingHandler.TrackEvent)
	r.Post("/api/tracking/generate-invite", trackingHandler.GenerateInvite)
	r.Post("/api/facebook-events", trackingHandler.FacebookEvent)
	r.Post("/api/messages/schedule", scheduleHandler.Create)
	r.Get("/api/messages", scheduleHandler.List)
	r.Post("/api/bots/{id}/webhook", botHandler.SetWebhook)

	port := ":" + getenv("PORT", "8080")
	log.Printf("🔥 Leadgram API running on %s", port)
	http.ListenAndServe(port, r)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
