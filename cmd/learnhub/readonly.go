package main

import (
	"os"

	"github.com/deppfellow/learnhub/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// readOnlyPasswordEnv is read when --password is not given, to keep the
// secret out of shell history.
const readOnlyPasswordEnv = "LEARNHUB_READONLY_PASSWORD"

// newProvisionReadOnlyCmd creates or refreshes the read-only database role.
func newProvisionReadOnlyCmd() *cobra.Command {
	role := database.ReadOnlyRole{}

	cmd := &cobra.Command{
		Use:   "provision-readonly",
		Short: "Create or refresh a read-only PostgreSQL role for reporting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role.Password == "" {
				role.Password = os.Getenv(readOnlyPasswordEnv)
			}

			cfg, log, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			ctx := cmd.Context()
			conn, err := pgx.Connect(ctx, cfg.Database.DSN())
			if err != nil {
				return errors.Wrap(err, "connecting to database")
			}
			defer conn.Close(ctx)

			return database.ProvisionReadOnly(ctx, conn, conn.Config().Database, role, log)
		},
	}

	cmd.Flags().StringVar(&role.Name, "role", "learnhub_readonly", "role name")
	cmd.Flags().StringVar(&role.Password, "password", "", "role password (default $"+readOnlyPasswordEnv+")")
	cmd.Flags().StringVar(&role.Schema, "schema", "public", "schema to grant SELECT on")

	return cmd
}
