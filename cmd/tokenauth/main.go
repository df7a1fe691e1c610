package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/goliatone/go-bearer/cmd/tokenauth/serve"
	"github.com/goliatone/go-bearer/cmd/tokenauth/token"
)

func main() {
	app := &cli.App{
		Name:  "tokenauth",
		Usage: "Bearer token authentication service",
		Commands: []*cli.Command{
			serve.Cmd(),
			token.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
