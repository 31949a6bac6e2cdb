package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/scheduler-api/internal/config"
	"github.com/jwalitptl/scheduler-api/internal/email"
	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	"github.com/jwalitptl/scheduler-api/internal/repository/postgres"
	"github.com/jwalitptl/scheduler-api/pkg/logger"
	"github.com/jwalitptl/scheduler-api/pkg/messaging"
	redisbroker "github.com/jwalitptl/scheduler-api/pkg/messaging/redis"
	"github.com/jwalitptl/scheduler-api/pkg/metrics"
	"github.com/jwalitptl/scheduler-api/pkg/worker"
)

// notifier turns published appointment events into patient emails.
type notifier struct {
	broker   messaging.Broker
	dentists repository.DentistRepository
	patients repository.PatientRepository
	emails   email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func (n *notifier) run(ctx context.Context) {
	booked, err := n.broker.Subscribe(ctx, model.EventAppointmentBooked)
	if err != nil {
		n.logger.Fatal(err, "failed to subscribe to booked events")
	}
	cancelled, err := n.broker.Subscribe(ctx, model.EventAppointmentCancelled)
	if err != nil {
		n.logger.Fatal(err, "failed to subscribe to cancelled events")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-booked:
			if !ok {
				return
			}
			n.notify(ctx, msg, false)
		case msg, ok := <-cancelled:
			if !ok {
				return
			}
			n.notify(ctx, msg, true)
		}
	}
}

func (n *notifier) notify(ctx context.Context, payload []byte, cancelled bool) {
	var apt model.Appointment
	if err := json.Unmarshal(payload, &apt); err != nil {
		n.logger.Error(err, "failed to decode appointment event")
		return
	}
	if apt.PatientID == nil {
		return
	}

	patient, err := n.patients.Get(ctx, *apt.PatientID)
	if err != nil {
		n.logger.Error(err, "failed to load patient", "patient_id", apt.PatientID.String())
		return
	}
	if patient.Email == "" {
		return
	}

	dentist, err := n.dentists.Get(ctx, apt.DentistID)
	if err != nil {
		n.logger.Error(err, "failed to load dentist", "dentist_id", apt.DentistID.String())
		return
	}

	details := email.BookingDetails{
		PatientName: patient.Name,
		DentistName: dentist.Name,
		StartTime:   apt.StartTime,
		EndTime:     apt.EndTime(),
	}

	if cancelled {
		err = n.emails.SendCancellation(ctx, patient.Email, details)
	} else {
		err = n.emails.SendBookingConfirmation(ctx, patient.Email, details)
	}
	if err != nil {
		n.metrics.EmailsFailed.Inc()
		n.logger.Error(err, "failed to send notification email", "appointment_id", apt.ID.String())
		return
	}
	n.metrics.EmailsSent.Inc()
}

func setupHealthCheck(logger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			logger.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, &log.Logger)
	if err != nil {
		appLogger.Fatal(err, "failed to create Redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	workerMetrics := metrics.NewMetrics("scheduler_worker")

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval(),
			RetryAttempts: cfg.Outbox.MaxRetries,
			RetryDelay:    5 * time.Second,
		},
		appLogger,
		workerMetrics,
	)

	n := &notifier{
		broker:   broker,
		dentists: postgres.NewDentistRepository(db),
		patients: postgres.NewPatientRepository(db),
		emails:   email.NewSMTPService(cfg.SMTP, appLogger),
		logger:   appLogger,
		metrics:  workerMetrics,
	}

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down...")
		cancel()
	}()

	go n.run(ctx)
	processor.Start(ctx)
}
