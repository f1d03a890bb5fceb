package authsdk

import (
	"regexp"
	"strings"
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

const requiredReason = "required"

// ============================================================================
// Request Types
// ============================================================================

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks field presence and shape. It returns a map of field
// names to problems, or nil.
func (c CredentialsRequest) Validate() map[string]string {
	errs := make(map[string]string)

	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		errs["email"] = requiredReason
	case len(email) > 254:
		errs["email"] = "too long (max 254)"
	case !reEmail.MatchString(email):
		errs["email"] = "must be an email address"
	}

	switch {
	case c.Password == "":
		errs["password"] = requiredReason
	case len(c.Password) > 1024:
		errs["password"] = "too long (max 1024)"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// PasswordResetRequest asks for a reset token for Email.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest sets a new password using a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ============================================================================
// Response Types
// ============================================================================

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// TokenResponse is returned by login and refresh. The refresh token is never
// part of it; it travels in an HttpOnly cookie.
type TokenResponse struct {
	// AccessToken is the JWT access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// PasswordResetResponse acknowledges a reset request. ResetToken is only
// set when the server delivers tokens in the response.
type PasswordResetResponse struct {
	Status     string `json:"status"`
	ResetToken string `json:"reset_token,omitempty"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse documents the error body. Clients receive *APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency in /readyz.
type HealthChecks struct {
	Database string `json:"database"`
}
