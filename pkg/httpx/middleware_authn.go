package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"
)

// ErrorWriter writes an error response body and status.
type ErrorWriter interface {
	WriteError(w http.ResponseWriter)
}

// BearerErrors are the responses AuthnMiddleware writes when it rejects a
// request: Missing when no bearer token was sent, Invalid otherwise.
type BearerErrors struct {
	Missing ErrorWriter
	Invalid ErrorWriter
}

// AuthnMiddleware requires a valid access token in the Authorization header
// and injects its subject and claims into the request context.
func AuthnMiddleware(v jwtx.Verifier, errs BearerErrors) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				// No credentials: challenge without an error code (RFC 6750 §3.1).
				w.Header().Set("WWW-Authenticate", "Bearer")
				errs.Missing.WriteError(w)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				writeInvalidBearer(w, errs.Invalid, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidatePurpose(jwtx.PurposeAccess); err != nil {
				writeInvalidBearer(w, errs.Invalid, "not an access token")
				log.Warn("jwt purpose rejected", "purpose", claims.Purpose)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeInvalidBearer(w http.ResponseWriter, body ErrorWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	body.WriteError(w)
}
