package http

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/pkg/authsdk"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"
)

// writeServiceError maps a service error onto the wire taxonomy. Anything
// unrecognised is logged and reported as a bare server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		apiErr = authsdk.ErrInvalidRequest
	case errors.Is(err, service.ErrConflict):
		apiErr = authsdk.ErrEmailTaken
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrMissingToken):
		apiErr = authsdk.ErrMissingToken
	case errors.Is(err, service.ErrRevokedToken):
		apiErr = authsdk.ErrTokenRevoked
	case errors.Is(err, service.ErrInvalidToken):
		apiErr = authsdk.ErrInvalidToken
	case errors.Is(err, service.ErrNotFound):
		apiErr = authsdk.ErrNotFound
	default:
		slogx.FromContext(r.Context()).Error(op+" failed", "error", err)
		apiErr = authsdk.ErrServerError
	}
	apiErr.WriteError(w)
}

// writeValidationError reports field problems as invalid_request.
func writeValidationError(w http.ResponseWriter, problems map[string]string) {
	fields := slices.Sorted(maps.Keys(problems))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+problems[f])
	}

	apiErr := *authsdk.ErrInvalidRequest
	apiErr.Description = strings.Join(parts, "; ")
	apiErr.WriteError(w)
}
