package logutil

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte

	statusRecorder struct {
		http.ResponseWriter
		status int
	}
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// Middleware tags every request with a fresh id, makes a logger carrying
// that id available through GetOrDefault and logs the request once it is done.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		logger := GetOrDefault(r.Context()).With().
			Str("req.id", reqID).
			Str("req.method", r.Method).
			Str("req.path", r.URL.Path).
			Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(rec, r.WithContext(WithLogger(r.Context(), logger)))
		logger.Info().Int("res.status", rec.status).Dur("elapsed", time.Since(start)).Msg("Request completed")
	})
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
