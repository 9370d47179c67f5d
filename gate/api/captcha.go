package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/postgate/captcha"
	"github.com/andrebq/postgate/gate"
	"github.com/andrebq/postgate/internal/logutil"
)

type (
	captchaRequest struct {
		Response string `json:"cf-turnstile-response" validate:"required"`
	}
)

// captchaHandler only checks the challenge with the provider, the clearance
// cookie itself is set by the provider script running on the client.
func captchaHandler(cv CaptchaVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)

		var body captchaRequest
		if err := decodeBody(w, r, &body); err != nil {
			log.Debug().Err(err).Msg("Rejecting captcha request")
			var verr validatorErrors
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, "Missing CAPTCHA response")
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		_, err := cv.Verify(ctx, body.Response)
		var (
			invalid gate.InvalidRequest
			cfgErr  gate.ConfigurationError
			failed  captcha.VerificationFailed
		)
		switch {
		case err == nil:
			writeSuccess(w)
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, "Missing CAPTCHA response")
		case errors.As(err, &cfgErr):
			log.Error().Err(err).Msg("Captcha secret is not configured")
			writeError(w, http.StatusInternalServerError, msgInternal)
		case errors.As(err, &failed):
			log.Warn().Err(err).Strs("error_codes", failed.ErrorCodes).Msg("Captcha validation failed")
			writeError(w, http.StatusBadRequest, "Invalid CAPTCHA")
		default:
			log.Error().Err(err).Msg("Unexpected error while verifying captcha")
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
	}
}
