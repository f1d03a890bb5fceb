package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/vaultguard/internal/auth/app"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the VaultGuard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaultguard",
		Short: "VaultGuard - email and password authentication service",
		Long: `VaultGuard registers accounts, issues short-lived access tokens and
cookie-borne refresh tokens, and handles password reset and logout.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	registerConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewGCCmd())
	cmd.AddCommand(NewUserCmd())

	return cmd
}

// registerConfigFlags mirrors the config keys every subcommand may need.
// Defaults here are informational; only flags the user sets override
// file and environment values.
func registerConfigFlags(fs *pflag.FlagSet) {
	d := app.Defaults()

	fs.String("database-driver", d.DatabaseDriver, "database driver (sqlite, postgres)")
	fs.String("database-url", d.DatabaseURL, "sqlite file path or postgres DSN")
	fs.String("pepper-file", d.PepperFile, "path to the password pepper file")
	fs.String("env", d.Env, "environment (dev, staging, prod)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "log format (json, text)")
}

// loadConfig resolves the layered configuration for cmd.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	return app.LoadConfig(configFile, cmd.Flags())
}

// openStore loads config, connects and migrates. The caller closes the store.
func openStore(ctx context.Context, cmd *cobra.Command) (app.Config, store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return app.Config{}, nil, err
	}

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return app.Config{}, nil, err
	}

	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return app.Config{}, nil, err
	}
	return cfg, st, nil
}

// commandContext bounds one-shot admin commands.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), time.Minute)
}
