package gate

import (
	"net/http"
	"time"

	"github.com/andrebq/postgate/accesstoken"
	"github.com/andrebq/postgate/captcha"
	"github.com/andrebq/postgate/gate"
	"github.com/andrebq/postgate/gate/api"
	"github.com/andrebq/postgate/internal/cmdflags"
	"github.com/andrebq/postgate/internal/httpserver"
	"github.com/andrebq/postgate/upstream"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7020"
	captchaEndpoint := captcha.DefaultEndpoint
	upstreamEndpoint := upstream.DefaultEndpoint
	upstreamTimeout := upstream.DefaultTimeout
	userAgent := upstream.DefaultUserAgent
	var captchaSecretEnvVar, jwtSecretEnvVar string
	return &cli.Command{
		Name:  "gate",
		Usage: "Start the captcha and password validation endpoints",
		Flags: []cli.Flag{
			cmdflags.Bind(&bindAddr),
			&cli.StringFlag{
				Name:        "captcha-endpoint",
				Usage:       "Siteverify endpoint of the captcha provider",
				Value:       captchaEndpoint,
				Destination: &captchaEndpoint,
			},
			&cli.StringFlag{
				Name:        "upstream-endpoint",
				Usage:       "Endpoint of the password verifier",
				EnvVars:     []string{"POSTGATE_UPSTREAM"},
				Value:       upstreamEndpoint,
				Destination: &upstreamEndpoint,
			},
			&cli.DurationFlag{
				Name:        "upstream-timeout",
				Usage:       "How long to wait for the password verifier before giving up",
				Value:       upstreamTimeout,
				Destination: &upstreamTimeout,
			},
			&cli.StringFlag{
				Name:        "user-agent",
				Usage:       "User-Agent sent to the password verifier",
				Value:       userAgent,
				Destination: &userAgent,
			},
			cmdflags.SecretEnvVar("captcha-secret-envvar-name", &captchaSecretEnvVar, gate.CaptchaSecretEnvVar,
				"Name of the environment variable that holds the captcha provider secret"),
			cmdflags.SecretEnvVar("jwt-secret-envvar-name", &jwtSecretEnvVar, gate.SigningSecretEnvVar,
				"Name of the environment variable that holds the token signing secret (at least 32 characters)"),
		},
		Action: func(ctx *cli.Context) error {
			handler := api.AsHandler(
				captcha.NewVerifier(captchaEndpoint, gate.SecretFromEnv(captchaSecretEnvVar, nil, nil), &http.Client{Timeout: time.Minute}),
				// bounded by --upstream-timeout only
				upstream.New(upstreamEndpoint,
					upstream.WithTimeout(upstreamTimeout),
					upstream.WithUserAgent(userAgent),
					upstream.WithClient(&http.Client{})),
				accesstoken.NewIssuer(gate.SecretFromEnv(jwtSecretEnvVar, nil, nil)),
			)
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
