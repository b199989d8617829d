package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"ADMIN_DB_URL,required"`                                // ConnectionString is the connection string to the shared admin catalog.
	MaxOpenConns      int32         `env:"ADMIN_DB_MAX_OPEN_CONNS" envDefault:"10"`              // MaxOpenConns is the maximum number of open connections.
	MaxIdleConns      int32         `env:"ADMIN_DB_MAX_IDLE_CONNS" envDefault:"5"`               // MaxIdleConns is the minimum number of idle connections kept open.
	HealthCheckPeriod time.Duration `env:"ADMIN_DB_HEALTHCHECK_PERIOD" envDefault:"1m"`          // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"ADMIN_DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`         // MaxConnIdleTime is the maximum time a connection may be idle.
	MaxConnLifetime   time.Duration `env:"ADMIN_DB_MAX_CONN_LIFETIME" envDefault:"30m"`          // MaxConnLifetime is the maximum time a connection may be reused.
	RetryAttempts     int           `env:"ADMIN_DB_RETRY_ATTEMPTS" envDefault:"3"`               // RetryAttempts is the number of connection attempts at startup.
	RetryInterval     time.Duration `env:"ADMIN_DB_RETRY_INTERVAL" envDefault:"5s"`              // RetryInterval is the base interval between attempts.
	MigrationsPath    string        `env:"ADMIN_MIGRATIONS_PATH" envDefault:"migrations/admin"`  // MigrationsPath is the goose migrations directory for the catalog.
	MigrationsTable   string        `env:"ADMIN_MIGRATIONS_TABLE" envDefault:"schema_migrations"` // MigrationsTable is the goose version table.
}
