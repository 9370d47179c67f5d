package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/postgate/accesstoken"
	"github.com/andrebq/postgate/gate"
	"github.com/andrebq/postgate/internal/logutil"
	"github.com/andrebq/postgate/upstream"
)

type (
	validateRequest struct {
		Slug      string `json:"slug" validate:"notblank"`
		Plaintext string `json:"plaintext" validate:"notblank"`
	}
)

// validateHandler runs the two guards in order (clearance cookie, then the
// password) and only then issues the access cookie for the post.
func validateHandler(pv PasswordValidator, ti TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)

		if _, err := r.Cookie(ClearanceCookie); err != nil {
			log.Info().Msg("No clearance cookie found")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var body validateRequest
		if err := decodeBody(w, r, &body); err != nil {
			log.Debug().Err(err).Msg("Rejecting validate request")
			writeError(w, http.StatusBadRequest, "Invalid request body: 'slug' and 'plaintext' must be non-empty strings")
			return
		}
		log = log.With().Str("slug", body.Slug).Logger()

		res, err := pv.Validate(ctx, body.Slug, body.Plaintext)
		var (
			invalid  gate.InvalidRequest
			timeout  gate.UpstreamTimeout
			upstrErr gate.UpstreamError
		)
		switch {
		case err == nil:
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, "Invalid request body: 'slug' and 'plaintext' must be non-empty strings")
			return
		case errors.As(err, &timeout):
			log.Warn().Err(err).Msg("Upstream validator timed out")
			writeError(w, http.StatusGatewayTimeout, "Upstream timeout (validation service took too long to respond)")
			return
		case errors.As(err, &upstrErr):
			log.Error().Int("upstream.status", upstrErr.Status).Str("upstream.body", upstrErr.Body).Msg("Upstream error")
			writeError(w, clientStatus(upstrErr.Status), "Error validating password")
			return
		default:
			log.Error().Err(err).Msg("An unexpected error occurred")
			writeError(w, http.StatusInternalServerError, msgUnexpected)
			return
		}

		if res != upstream.Verified {
			writeError(w, http.StatusUnauthorized, "Invalid password.")
			return
		}

		tk, err := ti.Issue(ctx, body.Slug)
		var cfgErr gate.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Error().Err(err).Msg("Unable to issue access token")
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		} else if err != nil {
			log.Error().Err(err).Msg("An unexpected error occurred")
			writeError(w, http.StatusInternalServerError, msgUnexpected)
			return
		}
		cookie, err := accesstoken.Cookie(tk)
		if err != nil {
			log.Error().Err(err).Msg("An unexpected error occurred")
			writeError(w, http.StatusInternalServerError, msgUnexpected)
			return
		}
		http.SetCookie(w, cookie)
		writeSuccess(w)
	}
}

// clientStatus forwards upstream error statuses, anything that would not carry
// a body back to the client becomes a bad gateway.
func clientStatus(upstreamStatus int) int {
	if upstreamStatus < 400 || upstreamStatus > 599 {
		return http.StatusBadGateway
	}
	return upstreamStatus
}
