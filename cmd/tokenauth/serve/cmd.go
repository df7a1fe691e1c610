package serve

import (
	"github.com/urfave/cli/v2"

	"github.com/goliatone/go-bearer/cmd/tokenauth/flags"
	"github.com/goliatone/go-bearer/internal/httpserver"
	"github.com/goliatone/go-bearer/internal/server"
)

func Cmd() *cli.Command {
	var configFile, envFile, bindAddr string
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API (register, authenticate, me)",
		Flags: append(flags.Config(&configFile, &envFile),
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind, overrides http.bind",
				Destination: &bindAddr,
			},
		),
		Action: func(ctx *cli.Context) error {
			appCtx, cfg, err := flags.Load(ctx.Context, configFile, envFile)
			if err != nil {
				return err
			}
			if bindAddr != "" {
				cfg.HTTP.Bind = bindAddr
			}

			srv, err := server.New(appCtx, cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			return httpserver.Serve(appCtx, cfg.HTTP.Bind, srv.App)
		},
	}
}
