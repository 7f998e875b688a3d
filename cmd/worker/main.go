package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/postgres"
	notificationService "github.com/medisched/scheduler-api/internal/service/notification"
	reminderWorker "github.com/medisched/scheduler-api/internal/worker"
	"github.com/medisched/scheduler-api/pkg/email"
	"github.com/medisched/scheduler-api/pkg/logger"
	redisbroker "github.com/medisched/scheduler-api/pkg/messaging/redis"
	"github.com/medisched/scheduler-api/pkg/metrics"
	"github.com/medisched/scheduler-api/pkg/worker"
)

// Standalone dispatch worker. Runs the same outbox processor the API
// embeds, for deployments that want notification dispatch scaled and
// restarted independently of the HTTP tier.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.FromZerolog(log.Logger).WithFields(map[string]interface{}{
		"component": "dispatch-worker",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.Redis.URL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	appMetrics := metrics.New("scheduler_worker")
	mailer := email.NewSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	dispatcher := notificationService.NewDispatcher(
		notificationRepo,
		appointmentRepo,
		patientRepo,
		doctorRepo,
		broker,
		mailer,
		appMetrics,
		appLogger,
	)

	processor := worker.NewOutboxProcessor(outboxRepo, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    time.Duration(cfg.Outbox.RetryDelaySeconds) * time.Second,
	}, appLogger, appMetrics)
	processor.Register(model.EventTypeNotificationDispatch, dispatcher)

	reminder := reminderWorker.NewReminder(appointmentRepo, outboxRepo, appLogger)
	if err := reminder.Start(cfg.Reminder.CronSpec); err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder scheduler")
	}
	defer reminder.Stop()

	setupHealthCheck()

	ctx, cancel := context.WithCancel(context.Background())
	go processor.Start(ctx)
	log.Info().Msg("dispatch worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker...")
	cancel()
}

func setupHealthCheck() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
