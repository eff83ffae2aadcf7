package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/maisonhub/sentinel/cmd/app/commands"
	"github.com/maisonhub/sentinel/internal/app"
	"github.com/maisonhub/sentinel/internal/config"
)

func getCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "clean-security-events",
			Usage: "Delete security events older than specified days from the durable store",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete security events older than this many days",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				repo, err := container.EventDurableRepository()
				if err != nil {
					return err
				}

				return commands.RunCleanSecurityEvents(
					ctx,
					repo,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-admin-key",
			Usage: "Generate an admin API key and its hash for ADMIN_API_KEY_HASH",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateAdminKey(commands.DefaultIO().Writer)
			},
		},
	}
}
