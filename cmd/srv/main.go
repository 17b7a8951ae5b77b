package main

import (
	"os"

	"github.com/droplink-labs/backend/internal/model"
	"github.com/urfave/cli/v2"
)

func main() {
	server := &srv{}

	app := &cli.App{
		Name:  "droplink",
		Usage: "claimable asset-drop backend",
		Commands: []*cli.Command{
			{
				Name:   "api",
				Usage:  "starts the api server",
				Action: server.startApi,
			},
			{
				Name:   "subscriber",
				Usage:  "consumes call outcomes from the broker",
				Action: server.startSubscriber,
			},
			{
				Name:  "replay",
				Usage: "publishes a call outcome to the broker",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "call-id", Required: true},
					&cli.StringFlag{Name: "type", Value: model.ClaimOutcomeTransfer},
					&cli.BoolFlag{Name: "success"},
				},
				Action: server.replayOutcome,
			},
			{
				Name:  "token",
				Usage: "mints a gateway token for local testing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true},
					&cli.StringFlag{Name: "signer-key"},
				},
				Action: server.generateToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}
}
