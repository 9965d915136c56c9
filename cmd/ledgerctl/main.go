// Command ledgerctl runs schema migrations and mints bearer tokens for local
// development.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DrkBotBase/delivery/config"
	"github.com/DrkBotBase/delivery/pkg/db/postgresql"
	"github.com/DrkBotBase/delivery/pkg/token"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Delivery ledger maintenance tool",
		SilenceUsage: true,
	}

	root.AddCommand(migrateCmd(), tokenCmd())
	return root
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(apply func(m *postgresql.Migrator) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := postgresql.NewMigrator(config.DatabaseConf().Pgsql.DSN())
			if err != nil {
				return err
			}
			defer m.Close()

			if err := apply(m); err != nil {
				return err
			}

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run(func(m *postgresql.Migrator) error { return m.Up() }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE:  run(func(m *postgresql.Migrator) error { return m.Down() }),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE:  run(func(m *postgresql.Migrator) error { return nil }),
		},
	)

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		owner string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := config.NewAppConfig()
			if err := conf.Validate(); err != nil {
				return err
			}

			t, err := token.Issue(conf.JWTSecret, owner, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner id put in the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	cmd.MarkFlagRequired("owner")

	return cmd
}
