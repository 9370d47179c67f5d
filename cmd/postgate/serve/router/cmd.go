package router

import (
	"net/url"

	"github.com/andrebq/postgate/internal/cmdflags"
	"github.com/andrebq/postgate/internal/httpserver"
	"github.com/andrebq/postgate/internal/siteproxy"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7007"
	gateEndpoint := "http://localhost:7020/"
	siteEndpoint := "http://localhost:4321/"
	return &cli.Command{
		Name:  "router",
		Usage: "Serve the static site and the gate from a single origin",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			&cli.StringFlag{
				Name:        "gate-endpoint",
				Usage:       "Base endpoint of the gate (receives /api/*)",
				Destination: &gateEndpoint,
				Value:       gateEndpoint,
			},
			&cli.StringFlag{
				Name:        "site-endpoint",
				Usage:       "Base endpoint serving the static site",
				Destination: &siteEndpoint,
				Value:       siteEndpoint,
			},
		},
		Action: func(ctx *cli.Context) error {
			gateURL, err := url.Parse(gateEndpoint)
			if err != nil {
				return err
			}
			siteURL, err := url.Parse(siteEndpoint)
			if err != nil {
				return err
			}
			handler, err := siteproxy.AsHandler(ctx.Context, gateURL, siteURL)
			if err != nil {
				return err
			}
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
