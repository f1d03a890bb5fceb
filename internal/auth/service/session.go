package service

import (
	"time"

	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
)

// SessionIssuer mints access and refresh tokens for an authenticated subject.
type SessionIssuer struct {
	Codec      *jwtx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuedRefresh is a freshly minted refresh token together with the metadata
// the transport needs to bind it, so nobody has to parse it back.
type IssuedRefresh struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// IssueAccess mints a stateless access token. It carries no jti and cannot be
// revoked individually; it simply runs out.
func (s *SessionIssuer) IssueAccess(subject string) (string, error) {
	return s.Codec.Sign(jwtx.NewClaims(subject, jwtx.PurposeAccess), s.AccessTTL)
}

// IssueRefresh mints a refresh token with a fresh random jti.
func (s *SessionIssuer) IssueRefresh(subject string) (IssuedRefresh, error) {
	claims := jwtx.NewClaims(subject, jwtx.PurposeRefresh)

	token, err := s.Codec.Sign(claims, s.RefreshTTL)
	if err != nil {
		return IssuedRefresh{}, err
	}

	return IssuedRefresh{
		Token:     token,
		TokenID:   claims.ID,
		ExpiresAt: s.Codec.Now().Add(s.RefreshTTL).Truncate(time.Second),
	}, nil
}

// VerifyAccess checks an access token and returns its claims. A refresh or
// reset token presented as a bearer token is rejected.
func (s *SessionIssuer) VerifyAccess(token string) (jwtx.Claims, error) {
	return s.verify(token, jwtx.PurposeAccess)
}

// VerifyRefresh checks signature, expiry and purpose of a refresh token. It
// does not consult the revocation registry.
func (s *SessionIssuer) VerifyRefresh(token string) (jwtx.Claims, error) {
	return s.verify(token, jwtx.PurposeRefresh)
}

// DecodeRefresh is VerifyRefresh without the expiry check.
func (s *SessionIssuer) DecodeRefresh(token string) (jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if err := claims.ValidatePurpose(jwtx.PurposeRefresh); err != nil {
		return jwtx.Claims{}, err
	}
	return claims, nil
}

func (s *SessionIssuer) verify(token string, purpose jwtx.Purpose) (jwtx.Claims, error) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if err := claims.ValidatePurpose(purpose); err != nil {
		return jwtx.Claims{}, err
	}
	return claims, nil
}
