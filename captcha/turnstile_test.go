package captcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/andrebq/postgate/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProvider(t *testing.T, calls *int32, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "provider-secret", r.PostForm.Get("secret"))
		assert.Equal(t, "challenge-token", r.PostForm.Get("response"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestVerify(t *testing.T) {
	var calls int32
	provider := fakeProvider(t, &calls, `{"success":true,"hostname":"example.com"}`)
	defer provider.Close()

	v := NewVerifier(provider.URL, gate.StaticSecret("test", "provider-secret"), provider.Client())
	out, err := v.Verify(context.Background(), "challenge-token")
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, "example.com", out.Hostname)
	require.EqualValues(t, 1, calls)
}

func TestVerifyRejected(t *testing.T) {
	var calls int32
	provider := fakeProvider(t, &calls, `{"success":false,"error-codes":["invalid-input-response"]}`)
	defer provider.Close()

	v := NewVerifier(provider.URL, gate.StaticSecret("test", "provider-secret"), provider.Client())
	_, err := v.Verify(context.Background(), "challenge-token")
	var failed VerificationFailed
	require.True(t, errors.As(err, &failed), "expecting VerificationFailed got %#v", err)
	require.Equal(t, []string{"invalid-input-response"}, failed.ErrorCodes)
}

func TestVerifyProviderDown(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer provider.Close()

	v := NewVerifier(provider.URL, gate.StaticSecret("test", "provider-secret"), provider.Client())
	_, err := v.Verify(context.Background(), "challenge-token")
	require.ErrorAs(t, err, &VerificationFailed{})
}

func TestVerifyWithoutCall(t *testing.T) {
	var calls int32
	provider := fakeProvider(t, &calls, `{"success":true}`)
	defer provider.Close()

	v := NewVerifier(provider.URL, gate.StaticSecret("test", "provider-secret"), provider.Client())
	_, err := v.Verify(context.Background(), "")
	require.ErrorAs(t, err, &gate.InvalidRequest{})

	v = NewVerifier(provider.URL, gate.StaticSecret("test", ""), provider.Client())
	_, err = v.Verify(context.Background(), "challenge-token")
	require.ErrorAs(t, err, &gate.ConfigurationError{})

	require.EqualValues(t, 0, calls, "provider should not be called")
}
