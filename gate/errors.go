package gate

import (
	"fmt"
	"time"
)

type (
	// InvalidRequest is returned when the client sent a malformed or
	// incomplete request.
	InvalidRequest struct {
		Reason string
	}

	// Unauthorized is returned when a guard refuses the request, either
	// because the clearance cookie is missing or because the password
	// did not match.
	Unauthorized struct {
		Reason string
	}

	// UpstreamTimeout is returned when the upstream validator did not
	// answer before the deadline.
	UpstreamTimeout struct {
		Timeout time.Duration
	}

	// UpstreamError is returned when the upstream validator answered with
	// a non-success status. Body is kept for logging only.
	UpstreamError struct {
		Status int
		Body   string
	}

	// ConfigurationError is returned when a server-held setting is missing
	// or invalid. It is fatal and should never be retried.
	ConfigurationError struct {
		Setting string
		cause   error
	}
)

func NewConfigurationError(setting string, cause error) ConfigurationError {
	return ConfigurationError{Setting: setting, cause: cause}
}

func (i InvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %v", i.Reason)
}

func (u Unauthorized) Error() string {
	return fmt.Sprintf("unauthorized: %v", u.Reason)
}

func (u UpstreamTimeout) Error() string {
	return fmt.Sprintf("upstream did not respond within %v", u.Timeout)
}

func (u UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %v", u.Status)
}

func (c ConfigurationError) Error() string {
	if c.cause == nil {
		return fmt.Sprintf("configuration error on %v", c.Setting)
	}
	return fmt.Sprintf("configuration error on %v, cause %v", c.Setting, c.cause)
}

func (c ConfigurationError) Unwrap() error {
	return c.cause
}
