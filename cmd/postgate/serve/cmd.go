package serve

import (
	"github.com/andrebq/postgate/cmd/postgate/serve/gate"
	"github.com/andrebq/postgate/cmd/postgate/serve/router"
	"github.com/andrebq/postgate/cmd/postgate/serve/verifier"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Root command to start various postgate services",
		Subcommands: []*cli.Command{
			gate.Cmd(),
			verifier.Cmd(),
			router.Cmd(),
		},
	}
}
