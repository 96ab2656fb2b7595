package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ReadOnlyRole describes a login role that may only read application tables.
type ReadOnlyRole struct {
	Name     string
	Password string
	Schema   string
}

// execer is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type execer interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProvisionReadOnly creates the role if missing (or resets its password),
// then grants CONNECT, USAGE and SELECT on current and future tables.
// Everything runs in one transaction.
func ProvisionReadOnly(ctx context.Context, db execer, database string, role ReadOnlyRole, logger *zerolog.Logger) error {
	if role.Name == "" {
		return errors.New("role name is required")
	}
	if role.Password == "" {
		return errors.New("role password is required")
	}
	if role.Schema == "" {
		role.Schema = "public"
	}

	statements := readOnlyStatements(database, role)

	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)`, role.Name).Scan(&exists); err != nil {
			return fmt.Errorf("checking role: %w", err)
		}

		first := statements.create
		if exists {
			first = statements.alter
		}

		for _, stmt := range append([]string{first}, statements.grants...) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("provisioning read-only role: %w", err)
			}
		}

		logger.Info().
			Str("role", role.Name).
			Bool("created", !exists).
			Msg("read-only role provisioned")
		return nil
	})
}

type roleStatements struct {
	create string
	alter  string
	grants []string
}

// readOnlyStatements renders the DDL. Identifiers are quoted with pgx; DDL
// does not accept bind parameters, so the password literal is escaped here.
func readOnlyStatements(database string, role ReadOnlyRole) roleStatements {
	name := pgx.Identifier{role.Name}.Sanitize()
	schema := pgx.Identifier{role.Schema}.Sanitize()
	db := pgx.Identifier{database}.Sanitize()
	password := quoteLiteral(role.Password)

	return roleStatements{
		create: fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD %s", name, password),
		alter:  fmt.Sprintf("ALTER ROLE %s WITH LOGIN PASSWORD %s", name, password),
		grants: []string{
			fmt.Sprintf("GRANT CONNECT ON DATABASE %s TO %s", db, name),
			fmt.Sprintf("GRANT USAGE ON SCHEMA %s TO %s", schema, name),
			fmt.Sprintf("GRANT SELECT ON ALL TABLES IN SCHEMA %s TO %s", schema, name),
			fmt.Sprintf("GRANT SELECT ON ALL SEQUENCES IN SCHEMA %s TO %s", schema, name),
			fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT SELECT ON TABLES TO %s", schema, name),
		},
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
