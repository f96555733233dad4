package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminevents "github.com/pulsmedic/pulsmedic-backend/internal/admin/events"
	adminhandler "github.com/pulsmedic/pulsmedic-backend/internal/admin/handler"
	adminservice "github.com/pulsmedic/pulsmedic-backend/internal/admin/service"
	appointmentevents "github.com/pulsmedic/pulsmedic-backend/internal/appointment/events"
	appointmenthandler "github.com/pulsmedic/pulsmedic-backend/internal/appointment/handler"
	appointmentrepo "github.com/pulsmedic/pulsmedic-backend/internal/appointment/repository"
	appointmentservice "github.com/pulsmedic/pulsmedic-backend/internal/appointment/service"
	"github.com/pulsmedic/pulsmedic-backend/internal/auth/blacklist"
	authhandler "github.com/pulsmedic/pulsmedic-backend/internal/auth/handler"
	"github.com/pulsmedic/pulsmedic-backend/internal/auth/jwt"
	authservice "github.com/pulsmedic/pulsmedic-backend/internal/auth/service"
	dashboardhandler "github.com/pulsmedic/pulsmedic-backend/internal/dashboard/handler"
	dashboardservice "github.com/pulsmedic/pulsmedic-backend/internal/dashboard/service"
	inventoryevents "github.com/pulsmedic/pulsmedic-backend/internal/inventory/events"
	inventoryhandler "github.com/pulsmedic/pulsmedic-backend/internal/inventory/handler"
	inventoryrepo "github.com/pulsmedic/pulsmedic-backend/internal/inventory/repository"
	inventoryservice "github.com/pulsmedic/pulsmedic-backend/internal/inventory/service"
	patientevents "github.com/pulsmedic/pulsmedic-backend/internal/patient/events"
	patienthandler "github.com/pulsmedic/pulsmedic-backend/internal/patient/handler"
	patientrepo "github.com/pulsmedic/pulsmedic-backend/internal/patient/repository"
	patientservice "github.com/pulsmedic/pulsmedic-backend/internal/patient/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
	"github.com/pulsmedic/pulsmedic-backend/pkg/migrations"
)

const serviceName = "clinic-api"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting PulsMedic clinic API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := migrate(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Events are published only when a broker is configured
	var (
		publisher messaging.EventPublisher = messaging.NopPublisher{}
		rmq       *messaging.RabbitMQ
	)
	if cfg.RabbitMQ.Enabled() {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()
		go rmq.Watch(ctx)
		publisher = messaging.NewPublisher(rmq, serviceName, log)
	} else {
		log.Warn().Msg("RabbitMQ not configured, domain events are dropped")
	}

	// Token blacklist, shared through Redis when configured
	var (
		tokenBlacklist blacklist.TokenBlacklist = blacklist.NewMemory()
		redisBlacklist *blacklist.Redis
	)
	if cfg.Redis.Enabled() {
		redisBlacklist, err = blacklist.NewRedis(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisBlacklist.Close()
		tokenBlacklist = redisBlacklist
	}

	// Services
	authService := authservice.NewAuthService(db, jwt.NewManager(&cfg.JWT), tokenBlacklist, publisher, log)
	patientService := patientservice.NewPatientService(
		patientrepo.NewPatientRepository(db),
		patientevents.NewPatientEventPublisher(publisher, log),
		log,
	)
	appointmentService := appointmentservice.NewAppointmentService(
		db, appointmentevents.NewAppointmentEventPublisher(publisher, log), cfg.Policy, log,
	)
	inventoryService := inventoryservice.NewInventoryService(
		db, inventoryevents.NewInventoryEventPublisher(publisher, log), cfg.Policy, log,
	)
	adminService := adminservice.NewAdminService(
		db, authService, adminevents.NewAdminEventPublisher(publisher, log), log,
	)
	dashboardService := dashboardservice.NewDashboardService(
		appointmentrepo.NewAppointmentRepository(db),
		patientrepo.NewPatientRepository(db),
		inventoryrepo.NewItemRepository(db),
		log,
	)

	h := handlers{
		auth:         authhandler.NewAuthHandler(authService, log),
		dashboard:    dashboardhandler.NewDashboardHandler(dashboardService, log),
		patients:     patienthandler.NewPatientHandler(patientService, log),
		appointments: appointmenthandler.NewAppointmentHandler(appointmentService, log),
		inventory:    inventoryhandler.NewInventoryHandler(inventoryService, log),
		admin:        adminhandler.NewAdminHandler(adminService, log),
	}

	health := func(ctx context.Context) map[string]interface{} {
		components := map[string]interface{}{
			"database": db.Health(ctx),
			"rabbitmq": map[string]string{"status": "disabled"},
			"redis":    map[string]string{"status": "disabled"},
		}
		if rmq != nil {
			components["rabbitmq"] = rmq.Health()
		}
		if redisBlacklist != nil {
			components["redis"] = redisBlacklist.Health(ctx)
		}
		return components
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, log, authService, h, health),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func migrate(cfg *config.Config, log *logger.Logger) error {
	m, err := migrations.NewFromURL(cfg.Database.MigrationURL(), log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
