package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/nikitalevshuk/university-tests/backend/commands"
	"github.com/nikitalevshuk/university-tests/backend/controllers"
)

// @title University Tests API
// @version 2.0.0
// @description Psychological testing backend for university students
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Bearer token; the access_token cookie is accepted as well
func main() {
	app := &cli.App{
		Name:    controllers.ServiceName,
		Usage:   "Psychological testing backend for university students",
		Version: controllers.Version,
		Commands: []*cli.Command{
			commands.ServeCmd(),
			commands.MigrateCmd(),
			commands.TestsCmd(),
			commands.SecretCmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		cancel()
		os.Exit(1)
	}
}
