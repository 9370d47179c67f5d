package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/andrebq/postgate/internal/logutil"
)

// Serve runs handler on bind until ctx is cancelled, then shuts the server
// down gracefully. Every request inherits the logger found in ctx.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	server := http.Server{
		Handler: logutil.Middleware(handler),
		Addr:    bind,
		// writes must outlive the upstream validator timeout
		ReadTimeout:       time.Second * 30,
		WriteTimeout:      time.Second * 30,
		ReadHeaderTimeout: time.Second * 10,
		IdleTimeout:       time.Minute * 2,
		BaseContext: func(net.Listener) context.Context {
			return logutil.WithLogger(context.Background(), logutil.GetOrDefault(ctx))
		},
	}
	err := make(chan error, 1)
	done := make(chan struct{})
	go serveInBackground(ctx, &server, err, done)
	<-done
	return <-err
}

func serveInBackground(ctx context.Context, server *http.Server, firstErr chan<- error, done chan<- struct{}) {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", server.Addr).Logger()
	defer close(done)
	serverCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		defer close(firstErr)
		log.Info().Msg("Starting HTTP server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			return
		} else if err != nil {
			select {
			case firstErr <- err:
			default:
			}
			return
		}
	}()
	select {
	case <-serverCtx.Done():
	case <-ctx.Done():
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Second*30)
		defer cancelShutdown()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("Shutdown completed")
	}
}
