package api

import (
	"context"
	"net/http"

	"github.com/andrebq/postgate/accesstoken"
	"github.com/andrebq/postgate/captcha"
	"github.com/andrebq/postgate/internal/logutil"
	"github.com/andrebq/postgate/upstream"
	"github.com/julienschmidt/httprouter"
)

type (
	CaptchaVerifier interface {
		Verify(ctx context.Context, response string) (captcha.Outcome, error)
	}

	PasswordValidator interface {
		Validate(ctx context.Context, slug, plaintext string) (upstream.Result, error)
	}

	TokenIssuer interface {
		Issue(ctx context.Context, slug string) (accesstoken.Token, error)
	}
)

const (
	ClearanceCookie = "cf_clearance"

	maxBodySize = 64 << 10
)

// AsHandler exposes the captcha and validate endpoints. Handlers keep no
// state between requests, everything lives in cookies or upstream services.
func AsHandler(cv CaptchaVerifier, pv PasswordValidator, ti TokenIssuer) http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodPost, "/api/captcha", captchaHandler(cv))
	router.HandlerFunc(http.MethodPost, "/api/validate", validateHandler(pv, ti))
	router.HandlerFunc(http.MethodGet, "/api/validate", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Interface("panic", v).Msg("Unexpected panic while handling request")
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
	return router
}
