package logutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := GetOrDefault(r.Context())
		log.Info().Msg("inside")
		seen = w.Header().Get("X-Request-Id")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req = req.WithContext(WithLogger(req.Context(), base))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotEmpty(t, seen)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var last map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &last))
	require.Equal(t, seen, last["req.id"])
	require.Equal(t, "/hello", last["req.path"])
	require.EqualValues(t, http.StatusTeapot, last["res.status"])
}
