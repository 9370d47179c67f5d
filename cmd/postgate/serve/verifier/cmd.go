package verifier

import (
	"time"

	"github.com/andrebq/postgate/credentials"
	"github.com/andrebq/postgate/credentials/api"
	"github.com/andrebq/postgate/internal/cmdflags"
	"github.com/andrebq/postgate/internal/httpserver"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7021"
	var db string
	cacheTTL := 5 * time.Minute
	return &cli.Command{
		Name:  "verifier",
		Usage: "Start a password verifier backed by a credential store (read only)",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			cmdflags.CredentialStore(&db),
			&cli.DurationFlag{
				Name:        "cache-ttl",
				Usage:       "How long to keep hashes in memory (0 disables the cache)",
				Value:       cacheTTL,
				Destination: &cacheTTL,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := credentials.OpenStore(ctx.Context, db, false)
			if err != nil {
				return err
			}
			defer store.Close()
			hashes, err := api.CachedSource(store, cacheTTL)
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx.Context, bindAddr, api.AsHandler(hashes))
		},
	}
}
