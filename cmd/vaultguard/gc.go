package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/vaultguard/internal/auth/app"
	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
)

// NewGCCmd creates the gc subcommand.
func NewGCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Purge expired revocation records",
		Long: `Delete revocation records whose token has expired. The server does the
same on its housekeeping interval; this runs one pass on demand.`,
		RunE: runGC,
	}
}

func runGC(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, st, err := openStore(ctx, cmd)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "open store").Wrap(err)
	}
	defer func() { _ = st.Close() }()

	hk := service.NewHousekeepingService(st, app.NewLogger(cfg), 0)
	n, err := hk.PurgeExpired(ctx)
	if err != nil {
		return oops.Code("GC_FAILED").With("operation", "purge revocations").Wrap(err)
	}

	cmd.Printf("Purged %d expired revocation record(s)\n", n)
	return nil
}
