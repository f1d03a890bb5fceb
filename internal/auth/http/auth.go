package http

import (
	"net/http"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/pkg/authsdk"
	"github.com/aussiebroadwan/vaultguard/pkg/httpx"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"
)

// AuthHandler serves the /v1/auth routes. Refresh tokens travel only in the
// cookie described by Cookie; access tokens only in response bodies.
type AuthHandler struct {
	Auth   *service.AuthService
	Cookie httpx.RefreshCookie
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account for an email address that is not yet registered.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CredentialsRequest	true	"email and password"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		409		{object}	authsdk.ErrorResponse	"email_taken"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if problems := req.Validate(); problems != nil {
		writeValidationError(w, problems)
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	slogx.FromContext(r.Context()).Info("user registered", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Exchanges credentials for an access token in the body and a refresh token in an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CredentialsRequest	true	"email and password"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Header			200		{string}	Set-Cookie		"vg_refresh refresh token"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	sess, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	h.writeSession(w, sess)
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the account identified by the bearer access token.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing_token, invalid_token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"not_found"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		authsdk.ErrMissingToken.WriteError(w)
		return
	}

	user, err := h.Auth.ReadSubject(r.Context(), subject)
	if err != nil {
		writeServiceError(w, r, "read self", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandlePasswordReset godoc
//
//	@Summary		Request password reset
//	@Description	Issues a single-use reset token for a registered email. Depending on the
//	@Description	configured delivery the token is logged server side or returned in the body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordResetRequest	true	"email"
//	@Success		202		{object}	authsdk.PasswordResetResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		404		{object}	authsdk.ErrorResponse	"not_found"
//	@Router			/v1/auth/password-reset [post].
func (h *AuthHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordResetRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token, err := h.Auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, "password reset", err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.PasswordResetResponse{
		Status:     "reset_requested",
		ResetToken: token,
	})
}

// HandlePasswordResetConfirm godoc
//
//	@Summary		Confirm password reset
//	@Description	Sets a new password using a reset token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordResetConfirmRequest	true	"token and new_password"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"missing_token, invalid_token"
//	@Failure		404		{object}	authsdk.ErrorResponse	"not_found"
//	@Router			/v1/auth/password-reset/confirm [post].
func (h *AuthHandler) HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordResetConfirmRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Auth.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, "password reset confirm", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revokes the refresh token carried in the cookie and expires the cookie.
//	@Description	Access tokens already issued stay valid until they expire.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.StatusResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing_token, invalid_token"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), h.Cookie.Read(r)); err != nil {
		writeServiceError(w, r, "logout", err)
		return
	}

	h.Cookie.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// HandleRefresh godoc
//
//	@Summary		Refresh
//	@Description	Mints a new access token from the refresh token in the cookie.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing_token, invalid_token, token_revoked"
//	@Header			200	{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Auth.Refresh(r.Context(), h.Cookie.Read(r))
	if err != nil {
		writeServiceError(w, r, "refresh", err)
		return
	}

	h.writeSession(w, sess)
}

// writeSession sets the refresh cookie when the session carries a new
// refresh token and writes the access token body.
func (h *AuthHandler) writeSession(w http.ResponseWriter, sess domain.Session) {
	if sess.RefreshToken != "" {
		h.Cookie.Set(w, sess.RefreshToken, sess.RefreshExpiresAt)
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(sess.AccessExpiresIn.Seconds()),
	})
}

func toUserResponse(u domain.PublicUser) authsdk.UserResponse {
	return authsdk.UserResponse{ID: u.ID, Email: u.Email}
}
