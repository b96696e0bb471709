// Package server assembles the Fiber application from its dependencies.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"userhub/internal/config"
	"userhub/internal/database"
	"userhub/internal/handlers"
	"userhub/internal/middleware"
	"userhub/internal/repositories"
	"userhub/internal/services"
	"userhub/internal/validation"
)

// Deps are the collaborators of the HTTP application. DB is nil when the
// in-memory repository is used; Publisher is nil when events are disabled.
type Deps struct {
	Config    config.Config
	DB        *gorm.DB
	Repo      repositories.UserRepository
	Publisher services.EventPublisher
	Log       zerolog.Logger
}

// NewApp builds the Fiber app with middleware, user routes and the health
// check.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "userhub",
		ErrorHandler: handlers.ErrorHandler(deps.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(deps.Log))

	userService := services.NewUserService(deps.Repo, deps.Publisher, deps.Config.RabbitMQExchange, deps.Log)
	userHandler := handlers.NewUserHandler(userService, validation.New(deps.Config.PhoneRegion))
	userHandler.RegisterRoutes(app)

	app.Get("/health", healthCheck(deps.DB, deps.Config.EventsEnabled()))

	return app
}

func healthCheck(db *gorm.DB, events bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code, store := "healthy", fiber.StatusOK, "memory"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()

			store = "connected"
			if err := database.Ping(ctx, db); err != nil {
				status, code, store = "unhealthy", fiber.StatusServiceUnavailable, err.Error()
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": store,
			"events":   events,
		})
	}
}
