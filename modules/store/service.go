package store

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/multistore/adminkit/pkg/tenant"
)

// Catalog is the slice of Repository the service mutates through.
type Catalog interface {
	Find(ctx context.Context, storeID string) (*tenant.Record, error)
	DomainInUse(ctx context.Context, domains ...string) (bool, error)
	Create(ctx context.Context, r *tenant.Record) error
	SetActive(ctx context.Context, storeID string, active bool) error
	SetSubscriptionStatus(ctx context.Context, storeID string, status tenant.SubscriptionStatus) error
	SetPlan(ctx context.Context, storeID string, plan Plan) error
	SetMaintenance(ctx context.Context, storeID string, mc tenant.MaintenanceConfig) error
	Delete(ctx context.Context, storeID string) error
}

// Provisioner owns the physical store databases and the pool cache.
// Satisfied by *tenantdb.Manager.
type Provisioner interface {
	CreateTenantStore(ctx context.Context, storeID string) error
	DeleteTenantStore(ctx context.Context, storeID string) error
	Evict(storeID string)
}

// Service is the administrative tenant-lifecycle surface. Every mutation
// drives the catalog and the pool cache together so the two never
// disagree about a store's existence or status.
type Service struct {
	catalog Catalog
	pools   Provisioner
	cache   tenant.Cache
	log     *slog.Logger
}

// NewService creates the lifecycle service. cache may be the same record
// cache the gateway uses; pass tenant.NewNoOpCache() to disable
// invalidation.
func NewService(catalog Catalog, pools Provisioner, cache tenant.Cache, log *slog.Logger) *Service {
	if cache == nil {
		cache = tenant.NewNoOpCache()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{catalog: catalog, pools: pools, cache: cache, log: log}
}

// CreateStoreParams carries the onboarding input.
type CreateStoreParams struct {
	Name         string `json:"store_name"`
	Domain       string `json:"domain"`
	Subdomain    string `json:"subdomain"`
	CustomDomain string `json:"custom_domain,omitempty"`
	PlanType     string `json:"plan_type,omitempty"`
}

// CreateStore onboards a new store: catalog row plus a freshly
// provisioned isolated database. If provisioning fails the catalog row is
// rolled back, so a half-created store never exists.
func (s *Service) CreateStore(ctx context.Context, params CreateStoreParams) (*tenant.Record, error) {
	if params.Name == "" || params.Domain == "" || params.Subdomain == "" {
		return nil, ErrMissingField
	}

	planType := params.PlanType
	if planType == "" {
		planType = PlanBasic
	}
	plan, ok := PlanByType(planType)
	if !ok {
		return nil, ErrUnknownPlan
	}

	taken, err := s.catalog.DomainInUse(ctx, params.Domain, params.Subdomain, params.CustomDomain)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDomainTaken
	}

	now := time.Now().UTC()
	record := &tenant.Record{
		ID:                 newStoreID(),
		Name:               params.Name,
		Domain:             strings.ToLower(params.Domain),
		Subdomain:          strings.ToLower(params.Subdomain),
		CustomDomain:       strings.ToLower(params.CustomDomain),
		Active:             true,
		SubscriptionStatus: tenant.SubscriptionTrial,
		PlanType:           plan.Type,
		MaxProducts:        plan.MaxProducts,
		MaxStorageMB:       plan.MaxStorageMB,
		MaxOrdersPerMonth:  plan.MaxOrdersPerMonth,
		LastActivity:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.catalog.Create(ctx, record); err != nil {
		return nil, err
	}

	if err := s.pools.CreateTenantStore(ctx, record.ID); err != nil {
		// Compensate: the catalog must not reference a database that was
		// never provisioned.
		if delErr := s.catalog.Delete(ctx, record.ID); delErr != nil {
			s.log.ErrorContext(ctx, "catalog rollback failed after provisioning error",
				slog.String("store_id", record.ID),
				slog.Any("error", delErr),
			)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "store created",
		slog.String("store_id", record.ID),
		slog.String("subdomain", record.Subdomain),
		slog.String("plan_type", record.PlanType),
	)

	return record, nil
}

// GetStore returns a store regardless of active flag.
func (s *Service) GetStore(ctx context.Context, storeID string) (*tenant.Record, error) {
	return s.catalog.Find(ctx, storeID)
}

// SuspendStore blocks a store's traffic: subscription goes to suspended,
// the cached record is invalidated and the pooled connection evicted.
// The store database stays untouched.
func (s *Service) SuspendStore(ctx context.Context, storeID, reason string) error {
	if err := s.catalog.SetSubscriptionStatus(ctx, storeID, tenant.SubscriptionSuspended); err != nil {
		return err
	}

	s.invalidate(ctx, storeID)
	s.pools.Evict(storeID)

	s.log.InfoContext(ctx, "store suspended",
		slog.String("store_id", storeID),
		slog.String("reason", reason),
	)
	return nil
}

// ReactivateStore lifts a suspension.
func (s *Service) ReactivateStore(ctx context.Context, storeID string) error {
	if err := s.catalog.SetSubscriptionStatus(ctx, storeID, tenant.SubscriptionActive); err != nil {
		return err
	}

	s.invalidate(ctx, storeID)

	s.log.InfoContext(ctx, "store reactivated", slog.String("store_id", storeID))
	return nil
}

// ChangePlan moves a store to another tier. The pool is evicted because
// plan changes may alter pooling parameters; it is rebuilt lazily on the
// next request.
func (s *Service) ChangePlan(ctx context.Context, storeID, planType string) error {
	plan, ok := PlanByType(planType)
	if !ok {
		return ErrUnknownPlan
	}

	if err := s.catalog.SetPlan(ctx, storeID, plan); err != nil {
		return err
	}

	s.invalidate(ctx, storeID)
	s.pools.Evict(storeID)

	s.log.InfoContext(ctx, "store plan changed",
		slog.String("store_id", storeID),
		slog.String("plan_type", planType),
	)
	return nil
}

// SetMaintenance toggles maintenance mode for a store. The gateway reads
// the flags live on every request, so no cache invalidation is needed.
func (s *Service) SetMaintenance(ctx context.Context, storeID string, mc tenant.MaintenanceConfig) error {
	if err := s.catalog.SetMaintenance(ctx, storeID, mc); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "store maintenance updated",
		slog.String("store_id", storeID),
		slog.Bool("enabled", mc.Enabled),
	)
	return nil
}

// DeleteStore tears a store down: deactivate first so no new traffic
// resolves, destroy the isolated database, then drop the catalog row.
// If the database teardown fails the store stays deactivated in the
// catalog and the operation can be retried; the catalog never points at
// a destroyed database and a destroyed database is never referenced by
// an active record.
func (s *Service) DeleteStore(ctx context.Context, storeID string) error {
	if err := s.catalog.SetActive(ctx, storeID, false); err != nil {
		return err
	}
	s.invalidate(ctx, storeID)

	if err := s.pools.DeleteTenantStore(ctx, storeID); err != nil {
		return err
	}

	if err := s.catalog.Delete(ctx, storeID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "store deleted", slog.String("store_id", storeID))
	return nil
}

// invalidate drops every cache key the store may be resolved under.
func (s *Service) invalidate(ctx context.Context, storeID string) {
	s.cache.Delete(ctx, storeID)

	record, err := s.catalog.Find(ctx, storeID)
	if err != nil {
		return
	}
	if record.Subdomain != "" {
		s.cache.Delete(ctx, record.Subdomain)
	}
	if record.CustomDomain != "" {
		s.cache.Delete(ctx, record.CustomDomain)
	}
}

// newStoreID generates the opaque 12-character store identifier.
func newStoreID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
