package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/multistore/adminkit/pkg/pg"
	"github.com/multistore/adminkit/pkg/tenant"
)

// DB is the slice of pgxpool.Pool the repository needs. Narrowed for
// testability.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the authoritative store catalog on the shared admin
// database. It implements tenant.Provider, tenant.MaintenanceSource and
// tenant.ActivityRecorder for the gateway, plus the mutations used by the
// administrative service.
type Repository struct {
	db DB
}

// NewRepository creates a catalog repository on the admin database pool.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `store_id, store_name, domain, subdomain, COALESCE(custom_domain, ''),
	is_active, subscription_status, subscription_end, plan_type,
	max_products, max_storage_mb, max_orders_per_month,
	last_activity, created_at, updated_at`

func scanRecord(row pgx.Row) (*tenant.Record, error) {
	var r tenant.Record
	err := row.Scan(
		&r.ID, &r.Name, &r.Domain, &r.Subdomain, &r.CustomDomain,
		&r.Active, &r.SubscriptionStatus, &r.SubscriptionEnd, &r.PlanType,
		&r.MaxProducts, &r.MaxStorageMB, &r.MaxOrdersPerMonth,
		&r.LastActivity, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetByIdentifier resolves a store by id, subdomain or custom domain,
// restricted to active stores. Missing and deactivated stores are the
// same uniform tenant.ErrTenantNotFound, as the gateway contract
// requires.
func (repo *Repository) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Record, error) {
	row := repo.db.QueryRow(ctx, `SELECT `+recordColumns+`
		FROM stores
		WHERE (store_id = $1 OR subdomain = $1 OR custom_domain = $1) AND is_active = TRUE`,
		identifier)

	record, err := scanRecord(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}
	return record, nil
}

// Find returns a store regardless of its active flag, for administrative
// callers.
func (repo *Repository) Find(ctx context.Context, storeID string) (*tenant.Record, error) {
	row := repo.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM stores WHERE store_id = $1`, storeID)

	record, err := scanRecord(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return record, nil
}

// DomainInUse reports whether any of the given domains is already
// registered. Empty strings are ignored.
func (repo *Repository) DomainInUse(ctx context.Context, domains ...string) (bool, error) {
	candidates := make([]string, 0, len(domains))
	for _, d := range domains {
		if d != "" {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}

	var exists bool
	err := repo.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM stores
		WHERE domain = ANY($1) OR subdomain = ANY($1) OR custom_domain = ANY($1)
	)`, candidates).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new store row together with its default settings row.
func (repo *Repository) Create(ctx context.Context, r *tenant.Record) error {
	_, err := repo.db.Exec(ctx, `INSERT INTO stores (
			store_id, store_name, domain, subdomain, custom_domain,
			is_active, subscription_status, subscription_end, plan_type,
			max_products, max_storage_mb, max_orders_per_month,
			last_activity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, now(), now(), now())`,
		r.ID, r.Name, r.Domain, r.Subdomain, r.CustomDomain,
		r.Active, r.SubscriptionStatus, r.SubscriptionEnd, r.PlanType,
		r.MaxProducts, r.MaxStorageMB, r.MaxOrdersPerMonth,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDomainTaken
		}
		return err
	}

	_, err = repo.db.Exec(ctx,
		`INSERT INTO store_settings (store_id) VALUES ($1) ON CONFLICT (store_id) DO NOTHING`,
		r.ID)
	return err
}

// SetActive flips the activity flag.
func (repo *Repository) SetActive(ctx context.Context, storeID string, active bool) error {
	return repo.exec(ctx,
		`UPDATE stores SET is_active = $2, updated_at = now() WHERE store_id = $1`,
		storeID, active)
}

// SetSubscriptionStatus updates the billing state.
func (repo *Repository) SetSubscriptionStatus(ctx context.Context, storeID string, status tenant.SubscriptionStatus) error {
	return repo.exec(ctx,
		`UPDATE stores SET subscription_status = $2, updated_at = now() WHERE store_id = $1`,
		storeID, status)
}

// SetPlan updates the plan tier and its quotas in one statement.
func (repo *Repository) SetPlan(ctx context.Context, storeID string, plan Plan) error {
	return repo.exec(ctx,
		`UPDATE stores SET plan_type = $2, max_products = $3, max_storage_mb = $4,
			max_orders_per_month = $5, updated_at = now()
		WHERE store_id = $1`,
		storeID, plan.Type, plan.MaxProducts, plan.MaxStorageMB, plan.MaxOrdersPerMonth)
}

// Delete removes the catalog row. Settings cascade with it.
func (repo *Repository) Delete(ctx context.Context, storeID string) error {
	return repo.exec(ctx, `DELETE FROM stores WHERE store_id = $1`, storeID)
}

// TouchActivity updates last_activity. Called by the gateway off the
// request path.
func (repo *Repository) TouchActivity(ctx context.Context, storeID string) error {
	_, err := repo.db.Exec(ctx,
		`UPDATE stores SET last_activity = now() WHERE store_id = $1`, storeID)
	return err
}

// Maintenance reads a store's maintenance flags from its settings row.
func (repo *Repository) Maintenance(ctx context.Context, storeID string) (*tenant.MaintenanceConfig, error) {
	var mc tenant.MaintenanceConfig
	err := repo.db.QueryRow(ctx, `SELECT maintenance_mode, COALESCE(maintenance_message, ''),
			COALESCE(maintenance_allowed_ips, '{}')
		FROM store_settings WHERE store_id = $1`,
		storeID).Scan(&mc.Enabled, &mc.Message, &mc.AllowedIPs)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &mc, nil
}

// SetMaintenance updates the maintenance flag set for a store.
func (repo *Repository) SetMaintenance(ctx context.Context, storeID string, mc tenant.MaintenanceConfig) error {
	return repo.exec(ctx, `UPDATE store_settings
		SET maintenance_mode = $2, maintenance_message = NULLIF($3, ''), maintenance_allowed_ips = $4
		WHERE store_id = $1`,
		storeID, mc.Enabled, mc.Message, mc.AllowedIPs)
}

func (repo *Repository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := repo.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

var (
	_ tenant.Provider          = (*Repository)(nil)
	_ tenant.MaintenanceSource = (*Repository)(nil)
	_ tenant.ActivityRecorder  = (*Repository)(nil)
)
