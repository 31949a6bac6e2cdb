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
	"golang.org/x/time/rate"

	"github.com/jwalitptl/scheduler-api/internal/config"
	"github.com/jwalitptl/scheduler-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/scheduler-api/internal/handler/appointment"
	dentistHandler "github.com/jwalitptl/scheduler-api/internal/handler/dentist"
	patientHandler "github.com/jwalitptl/scheduler-api/internal/handler/patient"
	"github.com/jwalitptl/scheduler-api/internal/middleware"
	"github.com/jwalitptl/scheduler-api/internal/repository/postgres"
	"github.com/jwalitptl/scheduler-api/internal/router"
	appointmentService "github.com/jwalitptl/scheduler-api/internal/service/appointment"
	dentistService "github.com/jwalitptl/scheduler-api/internal/service/dentist"
	patientService "github.com/jwalitptl/scheduler-api/internal/service/patient"
	"github.com/jwalitptl/scheduler-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	buffer := time.Duration(cfg.Scheduling.BufferMinutes) * time.Minute
	appointmentRepo := postgres.NewAppointmentRepository(db, buffer)
	dentistRepo := postgres.NewDentistRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	dentistSvc := dentistService.NewService(dentistRepo)
	patientSvc := patientService.NewService(patientRepo)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		dentistSvc,
		patientSvc,
		appointmentService.Config{
			BufferMinutes: cfg.Scheduling.BufferMinutes,
			StoreTimeout:  cfg.Scheduling.StoreTimeout(),
		},
		appLogger,
	)

	h := handler.NewHandler(db)

	r := router.NewRouter(
		appointmentHandler.NewHandler(appointmentSvc),
		dentistHandler.NewHandler(dentistSvc),
		patientHandler.NewHandler(patientSvc),
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "scheduler_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
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
