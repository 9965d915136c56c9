package config

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
)

type PgsqlConnectionConf struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

type DatabaseConfig struct {
	Pgsql PgsqlConnectionConf
}

func DatabaseConf() *DatabaseConfig {
	_ = godotenv.Load()

	port, err := strconv.Atoi(get("POSTGRES_PORT", "5432"))
	if err != nil {
		port = 5432
	}

	return &DatabaseConfig{
		Pgsql: PgsqlConnectionConf{
			Host:     get("POSTGRES_HOST", "db"),
			Port:     port,
			Database: get("POSTGRES_DB", "postgres"),
			Username: get("POSTGRES_USER", "postgres"),
			Password: get("POSTGRES_PASSWORD", "password"),
			SSLMode:  get("POSTGRES_SSLMODE", "disable"),
		},
	}
}

// DSN is the key/value connection string understood by pgx and lib/pq.
func (c PgsqlConnectionConf) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		c.Host,
		c.Port,
		c.Username,
		c.Database,
		c.Password,
		c.SSLMode,
	)
}

// URL is the postgres:// form used by golang-migrate.
func (c PgsqlConnectionConf) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}
