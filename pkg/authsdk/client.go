package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Route paths served by VaultGuard.
const (
	PathRegister             = "/v1/auth/register"
	PathLogin                = "/v1/auth/login"
	PathMe                   = "/v1/auth/me"
	PathPasswordReset        = "/v1/auth/password-reset"
	PathPasswordResetConfirm = "/v1/auth/password-reset/confirm"
	PathLogout               = "/v1/auth/logout"
	PathRefresh              = "/v1/auth/refresh"
)

// SDKClient is a client for the VaultGuard authentication service. Its
// HTTPClient carries a cookie jar that holds the refresh cookie.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a fresh cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // never fails with nil options

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Register creates an account.
func (c *SDKClient) Register(ctx context.Context, email, password string) (*UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, PathRegister, CredentialsRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and returns a Session. The refresh cookie is stored
// in the client's jar.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, PathLogin, CredentialsRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

// Me returns the owner of accessToken.
func (c *SDKClient) Me(ctx context.Context, accessToken string) (*UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, PathMe, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges the refresh cookie for a new access token.
func (c *SDKClient) Refresh(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, PathRefresh, nil, "")
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout revokes the refresh cookie. The server also clears it.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doJSON(ctx, http.MethodPost, PathLogout, nil, "")
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// RequestPasswordReset asks for a reset token. The returned response holds
// the token only when the server is configured to hand it out directly.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) (*PasswordResetResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, PathPasswordReset, PasswordResetRequest{Email: email}, "")
	if err != nil {
		return nil, err
	}

	var out PasswordResetResponse
	if err := decodeJSON(resp, &out, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPasswordReset sets a new password using a reset token.
func (c *SDKClient) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := PasswordResetConfirmRequest{Token: token, NewPassword: newPassword}
	resp, err := c.doJSON(ctx, http.MethodPost, PathPasswordResetConfirm, body, "")
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
