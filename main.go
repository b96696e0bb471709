package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"userhub/internal/config"
	"userhub/internal/database"
	"userhub/internal/logger"
	"userhub/internal/repositories"
	"userhub/internal/server"
	"userhub/internal/services"
	"userhub/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// --- Store ---
	db, repo, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to initialize store")
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				log.Error().Err(err).Msg("Error closing database")
			}
		}()
	}

	// --- Events ---
	// The publisher stays a nil interface when no broker is configured.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ client")
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing RabbitMQ client")
			}
		}()
		publisher = mqClient

		if cfg.RabbitMQAudit {
			audit := func(msg amqp.Delivery) error {
				return services.AuditUserEvent(log, msg.Body)
			}
			if err := mqClient.Consume("user_audit", "user.*", audit); err != nil {
				log.Error().Err(err).Msg("Failed to start audit consumer")
			}
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set, user events disabled")
	}

	// --- HTTP ---
	app := server.NewApp(server.Deps{
		Config:    cfg,
		DB:        db,
		Repo:      repo,
		Publisher: publisher,
		Log:       log,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("Starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error().Err(err).Msg("Server stopped with error")
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}

	log.Info().Msg("Server gracefully stopped")
}

// openStore returns the repository selected by DB_DRIVER. The *gorm.DB is nil
// for the in-memory store.
func openStore(cfg config.Config, log zerolog.Logger) (*gorm.DB, repositories.UserRepository, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn().Msg("Using in-memory user store, data is lost on exit")
		return nil, repositories.NewMemoryUserRepository(), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DBMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db, cfg.DBDriver, log); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}

	return db, repositories.NewGORMUserRepository(db), nil
}
