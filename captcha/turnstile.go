package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andrebq/postgate/gate"
)

const (
	DefaultEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
)

type (
	// Outcome is the provider answer for a single challenge response.
	Outcome struct {
		Success     bool     `json:"success"`
		ErrorCodes  []string `json:"error-codes,omitempty"`
		ChallengeTS string   `json:"challenge_ts,omitempty"`
		Hostname    string   `json:"hostname,omitempty"`
	}

	Verifier struct {
		endpoint string
		secret   gate.SecretFn
		client   *http.Client
	}

	// VerificationFailed covers every way a challenge can be rejected:
	// the provider could not be reached, answered with garbage or
	// reported the response as invalid.
	VerificationFailed struct {
		ErrorCodes []string
		cause      error
	}
)

func (v VerificationFailed) Error() string {
	if v.cause != nil {
		return fmt.Sprintf("captcha verification failed, cause %v", v.cause)
	}
	return fmt.Sprintf("captcha verification failed, error codes %v", v.ErrorCodes)
}

func (v VerificationFailed) Unwrap() error {
	return v.cause
}

// NewVerifier returns a verifier that talks to endpoint, when client is nil
// http.DefaultClient is used.
func NewVerifier(endpoint string, secret gate.SecretFn, client *http.Client) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Verifier{
		endpoint: endpoint,
		secret:   secret,
		client:   client,
	}
}

func (v *Verifier) Verify(ctx context.Context, response string) (Outcome, error) {
	if len(response) == 0 {
		return Outcome{}, gate.InvalidRequest{Reason: "missing captcha response"}
	}
	secret, err := v.secret(ctx)
	if err != nil {
		return Outcome{}, err
	}

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", response)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, VerificationFailed{cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.client.Do(req)
	if err != nil {
		return Outcome{}, VerificationFailed{cause: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, res.Body)
		return Outcome{}, VerificationFailed{cause: fmt.Errorf("provider responded with status %v", res.StatusCode)}
	}

	var out Outcome
	err = json.NewDecoder(res.Body).Decode(&out)
	if err != nil {
		return Outcome{}, VerificationFailed{cause: fmt.Errorf("unable to decode provider response, cause %w", err)}
	}
	if !out.Success {
		return out, VerificationFailed{ErrorCodes: out.ErrorCodes}
	}
	return out, nil
}
