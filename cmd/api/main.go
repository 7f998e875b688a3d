package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/handler"
	appointmentHandler "github.com/medisched/scheduler-api/internal/handler/appointment"
	authHandler "github.com/medisched/scheduler-api/internal/handler/auth"
	doctorHandler "github.com/medisched/scheduler-api/internal/handler/doctor"
	fileHandler "github.com/medisched/scheduler-api/internal/handler/file"
	notificationHandler "github.com/medisched/scheduler-api/internal/handler/notification"
	patientHandler "github.com/medisched/scheduler-api/internal/handler/patient"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/postgres"
	"github.com/medisched/scheduler-api/internal/router"
	appointmentService "github.com/medisched/scheduler-api/internal/service/appointment"
	authService "github.com/medisched/scheduler-api/internal/service/auth"
	"github.com/medisched/scheduler-api/internal/service/authz"
	doctorService "github.com/medisched/scheduler-api/internal/service/doctor"
	notificationService "github.com/medisched/scheduler-api/internal/service/notification"
	patientService "github.com/medisched/scheduler-api/internal/service/patient"
	reminderWorker "github.com/medisched/scheduler-api/internal/worker"
	"github.com/medisched/scheduler-api/pkg/email"
	"github.com/medisched/scheduler-api/pkg/logger"
	redisbroker "github.com/medisched/scheduler-api/pkg/messaging/redis"
	"github.com/medisched/scheduler-api/pkg/metrics"
	"github.com/medisched/scheduler-api/pkg/storage"
	"github.com/medisched/scheduler-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.FromZerolog(log.Logger)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	accountRepo := postgres.NewAccountRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	guard := authz.NewGuard(doctorRepo)

	authSvc := authService.NewService(accountRepo, cfg.JWT)
	doctorSvc := doctorService.NewService(doctorRepo, guard)
	patientSvc := patientService.NewService(patientRepo, appointmentRepo, guard, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, outboxRepo, guard, appLogger)
	notificationSvc := notificationService.NewService(notificationRepo)

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.Redis.URL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	uploader, err := storage.NewS3Uploader(
		context.Background(),
		cfg.Storage.Bucket,
		time.Duration(cfg.Storage.UploadExpiryMins)*time.Minute,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	appMetrics := metrics.New("scheduler")
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
	go processor.Start(context.Background())

	reminder := reminderWorker.NewReminder(appointmentRepo, outboxRepo, appLogger)
	if err := reminder.Start(cfg.Reminder.CronSpec); err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder scheduler")
	}
	defer reminder.Stop()

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.New(
		authMiddleware,
		handler.NewHealthHandler(db),
		authHandler.NewHandler(authSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc, appointmentSvc, notificationSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		notificationHandler.NewHandler(notificationSvc),
		fileHandler.NewHandler(uploader),
		router.Config{
			RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
			RateLimitBurst: cfg.Server.RateLimitBurst,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsPrefix:  "scheduler_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
