package main

import (
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/vaultguard/internal/auth/app"
	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
	"github.com/aussiebroadwan/vaultguard/pkg/cryptox"
)

// NewUserCmd creates the user admin subcommand.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts directly in the database",
	}

	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserDeleteCmd())

	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		passwordStdin bool
		generate      bool
	)

	cmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Create an account",
		Long: `Create an account with the same validation as the register endpoint.
The password is prompted for without echo, read from stdin with
--password-stdin, or generated and printed once with --generate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				password string
				err      error
			)
			if generate {
				password, err = cryptox.GeneratePassword()
			} else {
				password, err = readSecret(cmd, "Password: ", passwordStdin)
			}
			if err != nil {
				return oops.Code("INPUT_FAILED").With("operation", "read password").Wrap(err)
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			cfg, st, err := openStore(ctx, cmd)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("operation", "open store").Wrap(err)
			}
			defer func() { _ = st.Close() }()

			hasher, err := app.NewHasher(cfg)
			if err != nil {
				return err
			}

			// Register never touches the codec.
			svc := service.NewAuthService(st, nil, hasher, cfg.ServiceConfig(), nil, nil)
			user, err := svc.Register(ctx, args[0], password)
			switch {
			case errors.Is(err, service.ErrConflict):
				return oops.Code("USER_EXISTS").With("email", args[0]).Wrap(err)
			case errors.Is(err, service.ErrInvalidRequest):
				return oops.Code("INPUT_INVALID").With("email", args[0]).Wrap(err)
			case err != nil:
				return oops.Code("USER_CREATE_FAILED").Wrap(err)
			}

			cmd.Printf("Created user %d (%s)\n", user.ID, user.Email)
			if generate {
				cmd.Printf("Generated password: %s\n", password)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a random password and print it")
	cmd.MarkFlagsMutuallyExclusive("password-stdin", "generate")
	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EMAIL",
		Short: "Delete an account",
		Long: `Delete an account. Access tokens already issued to it stay valid until
they expire, but /v1/auth/me answers not_found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			_, st, err := openStore(ctx, cmd)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("operation", "open store").Wrap(err)
			}
			defer func() { _ = st.Close() }()

			user, err := st.Users().GetUserByEmail(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return oops.Code("USER_NOT_FOUND").With("email", args[0]).Wrap(err)
			}
			if err != nil {
				return err
			}

			if err := st.Users().DeleteUser(ctx, user.ID); err != nil {
				return oops.Code("USER_DELETE_FAILED").With("user_id", user.ID).Wrap(err)
			}

			cmd.Printf("Deleted user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}
}
