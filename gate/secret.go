package gate

import (
	"context"
	"errors"
	"os"
)

const (
	CaptchaSecretEnvVar = "TURNSTILE_SECRET_KEY"
	SigningSecretEnvVar = "JWT_SECRET"
)

type (
	// SecretFn returns a server-held secret. It is called on every request
	// that needs the secret, so a missing value surfaces as a
	// ConfigurationError at request time instead of preventing startup.
	SecretFn func(context.Context) (string, error)
)

var (
	errEmptySecret = errors.New("secret is empty")
)

// SecretFromEnv reads varname once and removes it from the environment,
// so child processes never see the value.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) SecretFn {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	return StaticSecret(varname, val)
}

// StaticSecret returns a SecretFn for a value already known, name is used
// only when reporting errors.
func StaticSecret(name, val string) SecretFn {
	return func(_ context.Context) (string, error) {
		if len(val) == 0 {
			return "", NewConfigurationError(name, errEmptySecret)
		}
		return val, nil
	}
}
