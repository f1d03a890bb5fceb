package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/vaultguard/pkg/cryptox"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"
)

// Delivery modes accepted by NewResetDelivery.
const (
	DeliveryLog      = "log"
	DeliveryResponse = "response"
)

// ResetDelivery hands a reset token to its owner. Deliver returns the token
// again when the caller itself is the delivery channel (the HTTP response),
// and "" otherwise.
type ResetDelivery interface {
	Deliver(ctx context.Context, email, token string) (string, error)
}

// LogDelivery writes reset tokens to the log. Outside dev only a fingerprint
// is written, which is enough to correlate but useless to an attacker.
type LogDelivery struct {
	Dev bool
}

func (d LogDelivery) Deliver(ctx context.Context, email, token string) (string, error) {
	l := slogx.FromContext(ctx)
	if d.Dev {
		l.Debug("password reset token issued", slog.String("email", email), slog.String("reset_token", token))
		return "", nil
	}
	l.Info("password reset token issued",
		slog.String("email", email),
		slog.String("token_fingerprint", cryptox.FingerprintToken(token)),
	)
	return "", nil
}

// ResponseDelivery returns the token to the caller.
type ResponseDelivery struct{}

func (ResponseDelivery) Deliver(_ context.Context, _, token string) (string, error) {
	return token, nil
}

// NewResetDelivery picks a delivery by mode. Unknown modes fall back to log.
func NewResetDelivery(mode string, dev bool) ResetDelivery {
	if mode == DeliveryResponse {
		return ResponseDelivery{}
	}
	return LogDelivery{Dev: dev}
}
