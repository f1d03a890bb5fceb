package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/vaultguard/internal/auth/domain"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
	"github.com/aussiebroadwan/vaultguard/pkg/cryptox"
	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"
)

const (
	maxEmailLength    = 254
	maxPasswordLength = 1024
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// AuthService implements the credential and session flows.
type AuthService struct {
	Store       store.Store
	Hasher      *cryptox.Hasher
	Sessions    *SessionIssuer
	Revocations *RevocationRegistry
	Resets      *ResetTokens
	Delivery    ResetDelivery
	Metrics     *Metrics
	Config      Config
}

// NewAuthService wires the flow controller. delivery may be nil, in which
// case reset tokens are logged. metrics may be nil.
func NewAuthService(
	st store.Store,
	codec *jwtx.Codec,
	hasher *cryptox.Hasher,
	cfg Config,
	delivery ResetDelivery,
	metrics *Metrics,
) *AuthService {
	if delivery == nil {
		delivery = LogDelivery{}
	}

	return &AuthService{
		Store:       st,
		Hasher:      hasher,
		Sessions:    &SessionIssuer{Codec: codec, AccessTTL: cfg.AccessTTL, RefreshTTL: cfg.RefreshTTL},
		Revocations: &RevocationRegistry{Store: st},
		Resets:      &ResetTokens{Codec: codec, TTL: cfg.ResetTTL},
		Delivery:    delivery,
		Metrics:     metrics,
		Config:      cfg,
	}
}

// Register creates a user. A duplicate email fails with ErrConflict, both
// when spotted up front and when the store's unique constraint catches a
// concurrent insert.
func (s *AuthService) Register(ctx context.Context, email, password string) (_ domain.PublicUser, err error) {
	defer func() { s.Metrics.observe("register", err) }()

	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return domain.PublicUser{}, err
	}

	_, err = s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.PublicUser{}, ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return domain.PublicUser{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user, err := s.Store.Users().CreateUser(ctx, email, hash)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.PublicUser{}, ErrConflict
		}
		return domain.PublicUser{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.Int64("user_id", user.ID))
	return user.Public(), nil
}

// Login checks credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ domain.Session, err error) {
	defer func() { s.Metrics.observe("login", err) }()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Session{}, ErrInvalidRequest
	}

	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}

	access, err := s.Sessions.IssueAccess(user.Email)
	if err != nil {
		return domain.Session{}, err
	}

	refresh, err := s.Sessions.IssueRefresh(user.Email)
	if err != nil {
		return domain.Session{}, err
	}

	s.upgradeHash(ctx, user, password)

	return domain.Session{
		AccessToken:      access,
		AccessExpiresIn:  s.Config.AccessTTL,
		RefreshToken:     refresh.Token,
		RefreshTokenID:   refresh.TokenID,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// authenticate is the single credential check behind Login.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.VerifyDummy(password)
			l.Info("login failed", slog.String("reason", "unknown_email"))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Info("login failed", slog.String("reason", "bad_password"), slog.Int64("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// upgradeHash re-hashes a legacy password hash after a successful login.
// Failure is logged and otherwise ignored; the old hash keeps working.
func (s *AuthService) upgradeHash(ctx context.Context, user domain.User, password string) {
	if !s.Hasher.NeedsRehash(user.PasswordHash) {
		return
	}

	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("password rehash failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		l.Warn("password rehash store failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return
	}

	l.Info("password hash upgraded", slog.Int64("user_id", user.ID))
}

// ReadSelf returns the user an access token belongs to.
func (s *AuthService) ReadSelf(ctx context.Context, accessToken string) (_ domain.PublicUser, err error) {
	defer func() { s.Metrics.observe("read_self", err) }()

	if accessToken == "" {
		return domain.PublicUser{}, ErrMissingToken
	}

	claims, err := s.Sessions.VerifyAccess(accessToken)
	if err != nil {
		slogx.FromContext(ctx).Debug("access token rejected", slog.Any("error", err))
		return domain.PublicUser{}, collapseTokenError(err)
	}

	return s.lookupSubject(ctx, claims.Subject)
}

// ReadSubject looks up the user behind a subject the caller already verified
// as an access token, e.g. through httpx.AuthnMiddleware. It counts as a
// read_self operation.
func (s *AuthService) ReadSubject(ctx context.Context, subject string) (_ domain.PublicUser, err error) {
	defer func() { s.Metrics.observe("read_self", err) }()
	return s.lookupSubject(ctx, subject)
}

func (s *AuthService) lookupSubject(ctx context.Context, subject string) (domain.PublicUser, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, ErrNotFound
		}
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// RequestPasswordReset issues a reset token for email and hands it to the
// configured delivery. The returned string is non-empty only when the
// delivery channel is the response itself.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (_ string, err error) {
	defer func() { s.Metrics.observe("request_password_reset", err) }()

	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidRequest
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	token, err := s.Resets.Issue(user.Email)
	if err != nil {
		return "", err
	}

	return s.Delivery.Deliver(ctx, user.Email, token)
}

// ConfirmPasswordReset sets a new password using a reset token. The user is
// looked up again so a token for a deleted account fails with ErrNotFound.
// With single-use resets the token is claimed first in the same transaction,
// so of two concurrent confirms only the one that inserts the revocation
// updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (err error) {
	defer func() { s.Metrics.observe("confirm_password_reset", err) }()

	if token == "" {
		return ErrMissingToken
	}
	if newPassword == "" || len(newPassword) > maxPasswordLength {
		return ErrInvalidRequest
	}

	grant, err := s.Resets.Verify(token)
	if err != nil {
		return err
	}
	if s.Config.ResetSingleUse && grant.TokenID == "" {
		return ErrInvalidToken
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		revocations := s.Revocations.Within(tx)

		if s.Config.ResetSingleUse {
			claimed, err := revocations.Claim(ctx, grant.TokenID, grant.ExpiresAt, domain.ReasonResetUsed)
			if err != nil {
				return err
			}
			if !claimed {
				return ErrInvalidToken
			}
		}

		user, err := tx.Users().GetUserByEmail(ctx, grant.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		return tx.Users().UpdatePasswordHash(ctx, user.ID, hash)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset completed")
	return nil
}

// Logout revokes a refresh token. Expired tokens with a valid signature are
// still revoked.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { s.Metrics.observe("logout", err) }()

	if refreshToken == "" {
		return ErrMissingToken
	}

	claims, err := s.Sessions.DecodeRefresh(refreshToken)
	if err != nil {
		slogx.FromContext(ctx).Debug("refresh token rejected on logout", slog.Any("error", err))
		return collapseTokenError(err)
	}
	if claims.ID == "" {
		return ErrMissingToken
	}

	return s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime(), domain.ReasonLogout)
}

// Refresh mints a new access token from a live, unrevoked refresh token.
// With rotation enabled the presented token is revoked and the returned
// session carries its replacement; otherwise RefreshToken is empty.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (_ domain.Session, err error) {
	defer func() { s.Metrics.observe("refresh", err) }()

	if refreshToken == "" {
		return domain.Session{}, ErrMissingToken
	}

	claims, err := s.Sessions.VerifyRefresh(refreshToken)
	if err != nil {
		slogx.FromContext(ctx).Debug("refresh token rejected", slog.Any("error", err))
		return domain.Session{}, collapseTokenError(err)
	}
	if claims.ID == "" {
		return domain.Session{}, ErrInvalidToken
	}

	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Session{}, err
	}
	if revoked {
		return domain.Session{}, ErrRevokedToken
	}

	access, err := s.Sessions.IssueAccess(claims.Subject)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{
		AccessToken:     access,
		AccessExpiresIn: s.Config.AccessTTL,
	}

	if !s.Config.RotateRefresh {
		return session, nil
	}

	claimed, err := s.Revocations.Claim(ctx, claims.ID, claims.ExpiresAtTime(), domain.ReasonRotated)
	if err != nil {
		return domain.Session{}, err
	}
	if !claimed {
		return domain.Session{}, ErrRevokedToken
	}

	next, err := s.Sessions.IssueRefresh(claims.Subject)
	if err != nil {
		return domain.Session{}, err
	}

	session.RefreshToken = next.Token
	session.RefreshTokenID = next.TokenID
	session.RefreshExpiresAt = next.ExpiresAt
	return session, nil
}

func validateCredentials(email, password string) error {
	switch {
	case email == "" || password == "":
		return ErrInvalidRequest
	case len(email) > maxEmailLength || len(password) > maxPasswordLength:
		return ErrInvalidRequest
	case !reEmail.MatchString(email):
		return ErrInvalidRequest
	}
	return nil
}
