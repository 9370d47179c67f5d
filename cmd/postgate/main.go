package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/andrebq/postgate/cmd/postgate/credentials"
	"github.com/andrebq/postgate/cmd/postgate/serve"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	logLevel := "info"
	envFile := ".env"
	app := &cli.App{
		Name:  "postgate",
		Usage: "Password gate for protected posts of a static blog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level to log (trace, debug, info, warn, error)",
				EnvVars:     []string{"LOG_LEVEL"},
				Value:       logLevel,
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "Dotenv file to load before running any command (ignored when missing)",
				Value:       envFile,
				Destination: &envFile,
			},
		},
		Before: func(ctx *cli.Context) error {
			lvl, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(lvl)
			if envFile == "" {
				return nil
			}
			err = godotenv.Load(envFile)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			credentials.Cmd(),
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
