package siteproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/andrebq/postgate/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

var (
	methods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD",
	}

	errMissingEndpoint = errors.New("siteproxy: gate and site endpoints are required")
)

// AsHandler sends /api/* to the gate and everything else to the static
// site, so both can be served from the same origin.
func AsHandler(ctx context.Context, gateCalls *url.URL, siteCalls *url.URL) (http.Handler, error) {
	if gateCalls == nil || siteCalls == nil {
		return nil, errMissingEndpoint
	}
	router := httprouter.New()

	gateProxy := newProxy(gateCalls)
	siteProxy := newProxy(siteCalls)

	for _, m := range methods {
		router.Handler(m, "/api/*rest", gateProxy)
	}

	// delegate to the site if not found
	router.NotFound = siteProxy
	router.HandleMethodNotAllowed = false
	router.RedirectTrailingSlash = false
	return router, nil
}

func newProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("target", target.String()).Msg("Unable to reach backend")
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy
}
