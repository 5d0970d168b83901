package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/finvault/cmd/app/commands"
	"github.com/allisson/finvault/internal/app"
	"github.com/allisson/finvault/internal/config"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getDataCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt-family-data",
			Usage: "Encrypt a family's pending balances, amounts and profiles",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "family-id",
					Required: true,
					Usage:    "Family whose data is encrypted",
				},
				&cli.StringFlag{
					Name:     "user-id",
					Required: true,
					Usage:    "User whose encryption salt derives the family key",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				// Ctrl-C stops the migrator between rows and still records the run.
				runCtx, stop := commands.WithInterrupt(ctx)
				defer stop()

				return commands.RunEncryptFamilyData(
					runCtx,
					container.EncryptionMigratorWithProgress,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("family-id"),
					cmd.String("user-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-audit-logs",
			Usage: "Verify the signatures of a family's audit logs",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "family-id",
					Required: true,
					Usage:    "Family whose audit trail is verified",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogger, err := container.AuditLogger()
				if err != nil {
					return err
				}

				runCtx, stop := commands.WithInterrupt(ctx)
				defer stop()

				return commands.RunVerifyAuditLogs(
					runCtx,
					auditLogger,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("family-id"),
					cmd.String("format"),
				)
			},
		},
	}
}
