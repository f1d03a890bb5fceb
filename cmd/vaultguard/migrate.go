package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/vaultguard/internal/auth/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the configured database.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	cmd.Println("Connecting to database...")
	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer func() { _ = st.Close() }()

	cmd.Println("Running migrations...")
	if err := st.ApplyMigrations(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	if v, ok := st.(versioned); ok {
		version, dirty, err := v.MigrationVersion()
		if err != nil {
			return oops.Code("MIGRATION_VERSION_FAILED").With("operation", "read version").Wrap(err)
		}
		cmd.Printf("Schema version %d (dirty: %t)\n", version, dirty)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

// versioned is implemented by drivers that can report their schema version.
type versioned interface {
	MigrationVersion() (uint, bool, error)
}
