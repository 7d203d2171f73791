package commands

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nikitalevshuk/university-tests/backend/server"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

func ServeCmd() *cli.Command {
	var migrate bool
	var port string
	cacheTTL := 5 * time.Minute
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "migrate",
				Usage:       "Create or update tables before serving",
				Destination: &migrate,
			},
			&cli.StringFlag{
				Name:        "port",
				Aliases:     []string{"p"},
				Usage:       "Port to listen on (defaults to SERVER_PORT)",
				Destination: &port,
			},
			&cli.DurationFlag{
				Name:        "cache-ttl",
				Usage:       "How long parsed test files stay cached, 0 disables the cache",
				Value:       cacheTTL,
				Destination: &cacheTTL,
			},
		},
		Action: func(ctx *cli.Context) error {
			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			if env.cfg.SecretGenerated {
				env.logger.Warn().Msg("JWT_SECRET is not set, using a random secret: sessions will not survive a restart")
			}
			if migrate {
				if err := utils.Migrate(env.db); err != nil {
					return err
				}
				env.logger.Info().Msg("Database migrated")
			}

			loader, err := testloader.New(env.cfg.TestsDir, cacheTTL, env.logger)
			if err != nil {
				return err
			}
			defer loader.Close()

			if port == "" {
				port = env.cfg.ServerPort
			}
			app := server.New(env.db, env.cfg, loader, env.logger)
			return server.Serve(ctx.Context, app, ":"+port, env.logger)
		},
	}
}

func MigrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the users and tests tables",
		Action: func(ctx *cli.Context) error {
			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := utils.Migrate(env.db); err != nil {
				return err
			}
			env.logger.Info().Msg("Database migrated")
			return nil
		},
	}
}
