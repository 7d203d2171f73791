package server

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nikitalevshuk/university-tests/backend/config"
	"github.com/nikitalevshuk/university-tests/backend/controllers"
	"github.com/nikitalevshuk/university-tests/backend/middleware"
	"github.com/nikitalevshuk/university-tests/backend/routes"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

const shutdownTimeout = time.Minute

// New assembles the fiber app with middleware and all routes.
func New(db *gorm.DB, cfg *config.Config, loader *testloader.Loader, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               controllers.ServiceName,
		ErrorHandler:          utils.ErrorHandler(logger),
		DisableStartupMessage: true,
		ReadTimeout:           time.Minute,
		WriteTimeout:          time.Minute,
		IdleTimeout:           5 * time.Minute,
	})

	// Credentials cannot be combined with a wildcard origin.
	corsConfig := cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}
	if corsConfig.AllowOrigins == "" || corsConfig.AllowOrigins == "*" {
		corsConfig.AllowOrigins = "*"
		corsConfig.AllowCredentials = false
	}

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(corsConfig))
	app.Use(middleware.LoggingMiddleware(logger))

	routes.SetupRoutes(app, db, cfg, loader)
	return app
}

// Serve listens on addr until ctx is done, then shuts the app down.
func Serve(ctx context.Context, app *fiber.App, addr string, logger zerolog.Logger) error {
	log := logger.With().Str("server.addr", addr).Logger()

	errc := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting HTTP server")
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("Initiating shutdown process")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		log.Info().Msg("Shutdown completed")
		return <-errc
	}
}
