package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func Bind(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "bind",
		Usage:       "Address to bind for incoming requests",
		Destination: out,
		Value:       *out,
	}
}

func CredentialStore(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "./credentials.db"
	}
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"d"},
		Usage:       "Path to the sqlite database holding password hashes",
		EnvVars:     []string{"POSTGATE_DB"},
		Destination: out,
		Value:       *out,
	}
}

// SecretEnvVar configures the NAME of the environment variable holding a
// secret, secrets themselves should never be passed as arguments.
func SecretEnvVar(name string, out *string, def string, usage string) cli.Flag {
	if len(*out) == 0 {
		*out = def
	}
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Value:       *out,
		Destination: out,
	}
}
