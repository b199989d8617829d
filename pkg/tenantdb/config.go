package tenantdb

import "time"

type Config struct {
	DatabasePrefix    string        `env:"TENANT_DB_PREFIX" envDefault:"store_"`                       // DatabasePrefix is prepended to the store id to form the database name.
	MaxOpenConns      int32         `env:"TENANT_DB_MAX_OPEN_CONNS" envDefault:"5"`                    // MaxOpenConns is the per-store pool size.
	MaxIdleConns      int32         `env:"TENANT_DB_MAX_IDLE_CONNS" envDefault:"1"`                    // MaxIdleConns is the minimum number of idle connections kept per store.
	HealthCheckPeriod time.Duration `env:"TENANT_DB_HEALTHCHECK_PERIOD" envDefault:"1m"`               // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"TENANT_DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`              // MaxConnIdleTime is the maximum time a connection may sit idle before being recycled.
	MaxConnLifetime   time.Duration `env:"TENANT_DB_MAX_CONN_LIFETIME" envDefault:"30m"`               // MaxConnLifetime is the maximum time a connection may be reused.
	MigrationsPath    string        `env:"TENANT_MIGRATIONS_PATH" envDefault:"migrations/tenant"`      // MigrationsPath holds the goose migrations applied to newly provisioned store databases.
	MigrationsTable   string        `env:"TENANT_MIGRATIONS_TABLE" envDefault:"tenant_schema_version"` // MigrationsTable is the goose version table inside each store database.
}
