package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/vaultguard/internal/auth/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Apply pending migrations, then serve the auth API until SIGINT or
SIGTERM, draining in-flight requests before exit.`,
		RunE: runServe,
	}

	d := app.Defaults()
	fs := cmd.Flags()
	fs.Int("port", d.Port, "HTTP listen port")
	fs.String("jwt-secret", "", "HS256 signing secret (prefer VAULTGUARD_JWT_SECRET)")
	fs.String("issuer", d.Issuer, "iss claim of issued tokens")
	fs.Duration("access-ttl", d.AccessTTL, "access token lifetime")
	fs.Duration("refresh-ttl", d.RefreshTTL, "refresh token lifetime")
	fs.Duration("reset-ttl", d.ResetTTL, "password reset token lifetime")
	fs.Bool("reset-single-use", d.ResetSingleUse, "consume reset tokens on first use")
	fs.Bool("rotate-refresh", d.RotateRefresh, "issue a new refresh token on every refresh")
	fs.String("reset-delivery", d.ResetDelivery, "reset token delivery (log, response)")
	fs.Bool("cookie-secure", d.CookieSecure, "mark the refresh cookie Secure")
	fs.Duration("housekeeping-interval", d.HousekeepingInterval, "revocation purge interval")
	fs.Duration("shutdown-grace-period", d.ShutdownGracePeriod, "graceful shutdown timeout")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	application, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return oops.Code("STARTUP_FAILED").With("operation", "initialize application").Wrap(err)
	}

	return application.Run()
}
