package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/finvault/cmd/app/commands"
	"github.com/allisson/finvault/internal/app"
	"github.com/allisson/finvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-encryption-key",
			Usage: "Generate a new hex master key for ENCRYPTION_MASTER_KEY",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateEncryptionKey(commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key wrapped by a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kms-provider",
					Required: true,
					Usage:    "KMS provider (localsecrets, hashivault, gcpkms, awskms, azurekeyvault)",
				},
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Required: true,
					Usage:    "KMS key URI (e.g., base64key://..., hashivault://my-key)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())

				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
