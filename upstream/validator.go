package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andrebq/postgate/gate"
)

const (
	DefaultEndpoint  = "https://validate.332712.xyz/api"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "postgate (+https://github.com/andrebq/postgate)"

	// upstream error bodies are only logged, no need to keep them whole
	maxErrorBody = 4096
)

type (
	Result byte

	Validator struct {
		endpoint  string
		userAgent string
		timeout   time.Duration
		client    *http.Client
	}

	Option func(*Validator)

	request struct {
		Slug      string `json:"slug"`
		Plaintext string `json:"plaintext"`
	}

	response struct {
		Verified bool `json:"verified"`
	}
)

const (
	NotVerified Result = iota
	Verified
)

func (r Result) String() string {
	if r == Verified {
		return "verified"
	}
	return "not-verified"
}

func WithTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(v *Validator) { v.userAgent = ua }
}

func WithClient(c *http.Client) Option {
	return func(v *Validator) { v.client = c }
}

func New(endpoint string, opts ...Option) *Validator {
	v := &Validator{
		endpoint:  endpoint,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		client:    http.DefaultClient,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate asks the upstream service whether plaintext is the password of
// slug. The whole exchange is bounded by the validator timeout, when it
// fires the in-flight request is aborted and gate.UpstreamTimeout is returned.
func (v *Validator) Validate(ctx context.Context, slug, plaintext string) (Result, error) {
	if len(strings.TrimSpace(slug)) == 0 || len(strings.TrimSpace(plaintext)) == 0 {
		return NotVerified, gate.InvalidRequest{Reason: "slug and plaintext must be non-empty"}
	}
	payload, err := json.Marshal(request{Slug: slug, Plaintext: plaintext})
	if err != nil {
		return NotVerified, fmt.Errorf("unable to encode validation request, cause %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return NotVerified, fmt.Errorf("unable to create validation request, cause %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", v.userAgent)

	res, err := v.client.Do(req)
	if err != nil {
		return NotVerified, v.callError(callCtx, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		if err != nil {
			body = []byte(fmt.Sprintf("<unable to read body: %v>", err))
		}
		return NotVerified, gate.UpstreamError{Status: res.StatusCode, Body: string(body)}
	}

	var out response
	err = json.NewDecoder(res.Body).Decode(&out)
	if err != nil {
		return NotVerified, v.callError(callCtx, fmt.Errorf("unable to decode validation response, cause %w", err))
	}
	if !out.Verified {
		return NotVerified, nil
	}
	return Verified, nil
}

func (v *Validator) callError(callCtx context.Context, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return gate.UpstreamTimeout{Timeout: v.timeout}
	}
	// the client may carry a shorter timeout of its own
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return gate.UpstreamTimeout{Timeout: v.timeout}
	}
	return fmt.Errorf("unable to call upstream validator, cause %w", err)
}
