package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/xenking/bazaar-shop/internal/domain/auth"
)

// NoAuth is an admin wrapper that performs no authentication. Used when the
// server runs without an API key pepper configured.
func NoAuth(next http.Handler) http.Handler { return next }

// RequireAPIKey wraps admin handlers with API key authentication. The key is
// presented in the api_key header, hashed with HMAC-SHA256 under pepper, and
// looked up in the repository. A constant-time comparison guards against
// timing side-channels even though the lookup already succeeded.
func RequireAPIKey(apikeys auth.Repository, pepper []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("api_key")
			if raw == "" {
				unauthorized(w)
				return
			}

			hash := auth.HashKey(raw, pepper)
			info, err := apikeys.FindByHash(r.Context(), hash)
			if err != nil {
				unauthorized(w)
				return
			}

			stored, err := hex.DecodeString(info.KeyHash)
			if err != nil {
				unauthorized(w)
				return
			}
			computed, err := hex.DecodeString(hash)
			if err != nil {
				unauthorized(w)
				return
			}
			if subtle.ConstantTimeCompare(computed, stored) != 1 {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
