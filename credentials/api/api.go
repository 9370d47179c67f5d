package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/andrebq/postgate/credentials"
	"github.com/andrebq/postgate/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	verifyRequest struct {
		Slug      string `json:"slug"`
		Plaintext string `json:"plaintext"`
	}

	verifyResponse struct {
		Verified bool `json:"verified"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

const (
	maxBodySize = 64 << 10
)

// AsHandler exposes the verifier contract used by the gate: POST /api with
// {slug, plaintext} answers {verified}. Unknown slugs are simply not verified.
func AsHandler(hashes HashSource) http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodPost, "/api", verify(hashes))
	return router
}

func verify(hashes HashSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)

		var body verifyRequest
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body)
		if err != nil || strings.TrimSpace(body.Slug) == "" || strings.TrimSpace(body.Plaintext) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "slug and plaintext are required"})
			return
		}

		cred, err := hashes.Lookup(ctx, body.Slug)
		var notFound credentials.CredentialNotFound
		if errors.As(err, &notFound) {
			log.Info().Str("slug", body.Slug).Msg("Unknown slug")
			writeJSON(w, http.StatusOK, verifyResponse{Verified: false})
			return
		} else if err != nil {
			log.Error().Err(err).Str("slug", body.Slug).Msg("Unable to load credential")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "unable to verify password"})
			return
		}

		ok, err := credentials.Compare(cred.Hash, body.Plaintext)
		if err != nil {
			log.Error().Err(err).Str("slug", body.Slug).Msg("Stored hash is invalid")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "unable to verify password"})
			return
		}
		writeJSON(w, http.StatusOK, verifyResponse{Verified: ok})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
