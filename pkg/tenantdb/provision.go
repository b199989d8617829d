package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// CreateTenantStore provisions the isolated database for a brand-new
// store and applies the tenant schema migrations to it. Used only at
// onboarding. Fails loudly and leaves no partial state: if the schema
// cannot be applied, the freshly created database is dropped again.
func (m *Manager) CreateTenantStore(ctx context.Context, storeID string) error {
	if err := validateStoreID(storeID); err != nil {
		return err
	}
	dbName := m.DatabaseName(storeID)

	if _, err := m.admin.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %s`, quoteIdent(dbName))); err != nil {
		m.logProvision(ctx, storeID, "store_create", "failure", err)
		return errors.Join(ErrProvisioningFailed, err)
	}

	if m.cfg.MigrationsPath != "" {
		if err := m.migrateTenant(ctx, dbName); err != nil {
			// Roll the database back so the catalog and the physical
			// layout never disagree about this store.
			if _, dropErr := m.admin.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS %s`, quoteIdent(dbName))); dropErr != nil {
				m.log.ErrorContext(ctx, "rollback of store database failed",
					slog.String("store_id", storeID),
					slog.Any("error", dropErr),
				)
			}
			m.logProvision(ctx, storeID, "store_create", "failure", err)
			return errors.Join(ErrProvisioningFailed, err)
		}
	}

	m.logProvision(ctx, storeID, "store_create", "success", nil)
	return nil
}

// DeleteTenantStore destroys a store's database and evicts any cached
// pool for the id. The eviction happens first and unconditionally, so no
// handle to possibly-destroyed data is ever served even when the drop
// itself fails midway.
func (m *Manager) DeleteTenantStore(ctx context.Context, storeID string) error {
	if err := validateStoreID(storeID); err != nil {
		return err
	}

	m.Evict(storeID)

	dbName := m.DatabaseName(storeID)
	if _, err := m.admin.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS %s WITH (FORCE)`, quoteIdent(dbName))); err != nil {
		m.logProvision(ctx, storeID, "store_delete", "failure", err)
		return errors.Join(ErrProvisioningFailed, err)
	}

	m.logProvision(ctx, storeID, "store_delete", "success", nil)
	return nil
}

// migrateTenant applies the tenant schema to a store database through
// goose, bridging the pgx pool to the database/sql interface goose
// expects.
func (m *Manager) migrateTenant(ctx context.Context, dbName string) error {
	pool, err := m.newPool(ctx, dbName)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			m.log.ErrorContext(ctx, "failed to close migration connection", slog.Any("error", err))
		}
	}(db)

	goose.SetTableName(m.cfg.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, m.cfg.MigrationsPath)
}

func (m *Manager) logProvision(ctx context.Context, storeID, op, outcome string, err error) {
	attrs := []any{
		slog.String("store_id", storeID),
		slog.String("operation", op),
		slog.String("outcome", outcome),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		m.log.ErrorContext(ctx, "store provisioning", attrs...)
		return
	}
	m.log.InfoContext(ctx, "store provisioning", attrs...)
}
