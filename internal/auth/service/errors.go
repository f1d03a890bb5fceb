package service

import (
	"errors"
)

var (
	ErrConflict           = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrRevokedToken       = errors.New("token_revoked")
	ErrNotFound           = errors.New("not_found")
	ErrMissingToken       = errors.New("missing_token")
	ErrInvalidRequest     = errors.New("invalid_request")
)

// collapseTokenError folds every codec failure (bad signature, malformed,
// expired, wrong algorithm, wrong purpose) into ErrInvalidToken. Callers see
// one error kind; the precise cause is only ever logged.
func collapseTokenError(err error) error {
	if err == nil {
		return nil
	}
	return ErrInvalidToken
}
