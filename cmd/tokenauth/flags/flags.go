package flags

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/goliatone/go-bearer/config"
	"github.com/goliatone/go-bearer/internal/logutil"
)

// Config returns the flags shared by every command that loads configuration
func Config(configFile, envFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a YAML config file",
			EnvVars:     []string{"TOKENAUTH_CONFIG"},
			Destination: configFile,
		},
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Path to a .env file loaded before reading the environment",
			Destination: envFile,
		},
	}
}

// Load reads the configuration and returns a context carrying the
// configured logger
func Load(ctx context.Context, configFile, envFile string) (context.Context, *config.Config, error) {
	cfg, err := config.Load(config.WithConfigFile(configFile), config.WithEnvFile(envFile))
	if err != nil {
		return ctx, nil, err
	}
	logger, err := logutil.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return ctx, nil, err
	}
	return logutil.WithLogger(ctx, logger), cfg, nil
}
