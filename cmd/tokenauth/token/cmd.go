package token

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	auth "github.com/goliatone/go-bearer"
	"github.com/goliatone/go-bearer/cmd/tokenauth/flags"
	"github.com/goliatone/go-bearer/internal/logutil"
)

func Cmd() *cli.Command {
	var configFile, envFile string
	return &cli.Command{
		Name:  "token",
		Usage: "Issue and inspect bearer tokens with the configured signing key",
		Flags: flags.Config(&configFile, &envFile),
		Subcommands: []*cli.Command{
			issueCmd(&configFile, &envFile),
			inspectCmd(&configFile, &envFile),
		},
	}
}

func issueCmd(configFile, envFile *string) *cli.Command {
	var subject string
	var claims cli.StringSlice
	return &cli.Command{
		Name:  "issue",
		Usage: "Sign a token for a subject",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "subject",
				Aliases:     []string{"s"},
				Usage:       "Principal identifier stored in the sub claim",
				Required:    true,
				Destination: &subject,
			},
			&cli.StringSliceFlag{
				Name:        "claim",
				Usage:       "Extra claim as key=value, can be repeated",
				Destination: &claims,
			},
		},
		Action: func(ctx *cli.Context) error {
			codec, err := loadCodec(ctx, *configFile, *envFile)
			if err != nil {
				return err
			}
			extra, err := ParseClaims(claims.Value())
			if err != nil {
				return err
			}
			raw, err := codec.Issue(subject, extra)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, raw)
			return nil
		},
	}
}

func inspectCmd(configFile, envFile *string) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Verify a token and print its claims",
		ArgsUsage: "<token>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.Exit("expected exactly one token argument", 2)
			}
			codec, err := loadCodec(ctx, *configFile, *envFile)
			if err != nil {
				return err
			}
			claims, err := codec.DecodeAndVerify(ctx.Args().First())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(ctx.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}

// ParseClaims turns key=value pairs into extra claims
func ParseClaims(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid claim %q, expected key=value", pair)
		}
		out[k] = v
	}
	return out, nil
}

func loadCodec(ctx *cli.Context, configFile, envFile string) (*auth.TokenCodec, error) {
	appCtx, cfg, err := flags.Load(ctx.Context, configFile, envFile)
	if err != nil {
		return nil, err
	}
	logger := logutil.NewAdapter(logutil.GetOrDefault(appCtx))
	return auth.NewTokenCodecFromConfig(cfg, auth.WithCodecLogger(logger))
}
