package postgres

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/DrkBotBase/delivery/config"
	"github.com/DrkBotBase/delivery/pkg/db/postgresql"
)

type Suite struct {
	Ctx     context.Context
	Pgx     *pgx.Conn
	DSN     string
	migrate *postgresql.Migrator
}

// Available reports whether a test database is configured.
func Available() bool {
	return os.Getenv("POSTGRES_HOST") != ""
}

func SetupInstance(ctx context.Context) *Suite {

	dsn := config.DatabaseConf().Pgsql.DSN()

	suite := Suite{
		Ctx: ctx,
		DSN: dsn,
	}

	var err error
	suite.migrate, err = postgresql.NewMigrator(dsn)
	if err != nil {
		panic(fmt.Errorf("failed to create migration instance: %w", err))
	}

	if err = suite.migrate.Down(); err != nil {
		panic(fmt.Errorf("failed to reset migrations: %w", err))
	}

	if err = suite.migrate.Up(); err != nil {
		panic(fmt.Errorf("failed to up migrations: %w", err))
	}

	suite.Pgx, err = pgx.Connect(ctx, dsn)
	if err != nil {
		panic(fmt.Errorf("failed to connect by pgx: %w", err))
	}

	return &suite
}

func (suite *Suite) TearDownInstance() {
	if err := suite.migrate.Down(); err != nil {
		panic(fmt.Errorf("failed to rollback db migrations: %w", err))
	}

	if err := suite.migrate.Close(); err != nil {
		panic(fmt.Errorf("failed to close migrator: %w", err))
	}

	if err := suite.Pgx.Close(suite.Ctx); err != nil {
		panic(fmt.Errorf("failed close pgx connection: %w", err))
	}
}

func (suite *Suite) TruncateAll() {
	query := `
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'`

	rows, err := suite.Pgx.Query(suite.Ctx, query)
	if err != nil {
		panic(fmt.Errorf("failed to get list of tables: %w", err))
	}

	tableNames, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		panic(fmt.Errorf("failed to scan table names: %w", err))
	}

	for _, tableName := range tableNames {
		if tableName == postgresql.MigrationsTable {
			continue
		}

		query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", tableName)
		if _, err := suite.Pgx.Exec(suite.Ctx, query); err != nil {
			panic(fmt.Errorf("failed to truncate table: %w", err))
		}
	}
}
