package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies HS256 tokens with a single process-wide secret.
// The secret is fixed at construction and never changes afterwards, so a
// Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption tweaks a Codec at construction time.
type CodecOption func(*Codec)

// WithIssuer stamps "iss" on every signed token and enforces it on verify.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// WithClock overrides the time source, mostly useful in tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec. An empty secret is a configuration error and the
// caller is expected to refuse to start.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrConfig
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
		// Claims are validated by hand below so expiry can be skipped on Decode.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Now is the codec's current time in UTC.
func (c *Codec) Now() time.Time {
	return c.now().UTC()
}

// Sign stamps iat/exp (and iss when configured) onto claims and returns the
// compact serialised token. A non-positive ttl produces a token that is
// already expired.
func (c *Codec) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := c.now().UTC()

	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if c.issuer != "" {
		claims.Issuer = c.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}

	return signed, nil
}

// Verify checks algorithm, signature, structure, issuer and expiry. Expiry
// has no grace period: revocation records are purged at exp, so a token must
// stop verifying at that same instant.
func (c *Codec) Verify(token string) (Claims, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return Claims{}, err
	}

	if err := claims.ValidateExpiry(c.now().UTC()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// Decode checks algorithm, signature, structure and issuer but not expiry.
// It exists so that expired refresh tokens can still be revoked.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims

	_, err := c.parser.ParseWithClaims(token, &claims, c.keyFunc)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrAlgMismatch
	}
	return c.secret, nil
}

// mapParseError narrows the jwt library's errors down to our sentinels.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return ErrMalformed
	}
}
