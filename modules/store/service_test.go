package store_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multistore/adminkit/modules/store"
	"github.com/multistore/adminkit/pkg/tenant"
)

type fakeCatalog struct {
	mu          sync.Mutex
	records     map[string]*tenant.Record
	taken       map[string]bool
	maintenance map[string]tenant.MaintenanceConfig
	ops         []string

	createErr error
	deleteErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		records:     make(map[string]*tenant.Record),
		taken:       make(map[string]bool),
		maintenance: make(map[string]tenant.MaintenanceConfig),
	}
}

func (c *fakeCatalog) op(name string) {
	c.ops = append(c.ops, name)
}

func (c *fakeCatalog) Find(ctx context.Context, storeID string) (*tenant.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[storeID]
	if !ok {
		return nil, store.ErrStoreNotFound
	}
	return rec, nil
}

func (c *fakeCatalog) DomainInUse(ctx context.Context, domains ...string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range domains {
		if d != "" && c.taken[d] {
			return true, nil
		}
	}
	return false, nil
}

func (c *fakeCatalog) Create(ctx context.Context, r *tenant.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op("create")
	if c.createErr != nil {
		return c.createErr
	}
	c.records[r.ID] = r
	return nil
}

func (c *fakeCatalog) SetActive(ctx context.Context, storeID string, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op("set_active")
	rec, ok := c.records[storeID]
	if !ok {
		return store.ErrStoreNotFound
	}
	rec.Active = active
	return nil
}

func (c *fakeCatalog) SetSubscriptionStatus(ctx context.Context, storeID string, status tenant.SubscriptionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op("set_subscription_status")
	rec, ok := c.records[storeID]
	if !ok {
		return store.ErrStoreNotFound
	}
	rec.SubscriptionStatus = status
	return nil
}

func (c *fakeCatalog) SetPlan(ctx context.Context, storeID string, plan store.Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op("set_plan")
	rec, ok := c.records[storeID]
	if !ok {
		return store.ErrStoreNotFound
	}
	rec.PlanType = plan.Type
	rec.MaxProducts = plan.MaxProducts
	rec.MaxStorageMB = plan.MaxStorageMB
	rec.MaxOrdersPerMonth = plan.MaxOrdersPerMonth
	return nil
}

func (c *fakeCatalog) SetMaintenance(ctx context.Context, storeID string, mc tenant.MaintenanceConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op("set_maintenance")
	if _, ok := c.records[storeID]; !ok {
		return store.ErrStoreNotFound
	}
	c.maintenance[storeID] = mc
	return nil
}

func (c *fakeCatalog) Delete(ctx context.Context, storeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op("delete")
	if c.deleteErr != nil {
		return c.deleteErr
	}
	if _, ok := c.records[storeID]; !ok {
		return store.ErrStoreNotFound
	}
	delete(c.records, storeID)
	return nil
}

func (c *fakeCatalog) operations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ops...)
}

type fakeProvisioner struct {
	mu      sync.Mutex
	ops     []string
	created []string
	deleted []string
	evicted []string

	createErr error
	deleteErr error
}

func (p *fakeProvisioner) CreateTenantStore(ctx context.Context, storeID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ops = append(p.ops, "provision")
	if p.createErr != nil {
		return p.createErr
	}
	p.created = append(p.created, storeID)
	return nil
}

func (p *fakeProvisioner) DeleteTenantStore(ctx context.Context, storeID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ops = append(p.ops, "deprovision")
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, storeID)
	return nil
}

func (p *fakeProvisioner) Evict(storeID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ops = append(p.ops, "evict")
	p.evicted = append(p.evicted, storeID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testCacheTTL = 5 * time.Minute

func validParams() store.CreateStoreParams {
	return store.CreateStoreParams{
		Name:      "Acme Widgets",
		Domain:    "acme.example.com",
		Subdomain: "acme",
	}
}

func TestCreateStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("onboards a store with trial subscription and basic plan", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		pools := &fakeProvisioner{}
		svc := store.NewService(catalog, pools, tenant.NewNoOpCache(), testLogger())

		rec, err := svc.CreateStore(ctx, validParams())
		require.NoError(t, err)

		assert.Len(t, rec.ID, 12)
		assert.True(t, rec.Active)
		assert.Equal(t, tenant.SubscriptionTrial, rec.SubscriptionStatus)
		assert.Equal(t, store.PlanBasic, rec.PlanType)
		assert.Equal(t, 100, rec.MaxProducts)
		assert.Equal(t, 500, rec.MaxStorageMB)
		assert.Equal(t, 1000, rec.MaxOrdersPerMonth)
		assert.Equal(t, []string{rec.ID}, pools.created)
	})

	t.Run("generated ids are unique", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		svc := store.NewService(catalog, &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			rec, err := svc.CreateStore(ctx, validParams())
			require.NoError(t, err)
			require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
			seen[rec.ID] = true
		}
	})

	t.Run("applies the requested plan quotas", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		svc := store.NewService(catalog, &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())

		params := validParams()
		params.PlanType = store.PlanEnterprise
		rec, err := svc.CreateStore(ctx, params)
		require.NoError(t, err)

		assert.Equal(t, store.PlanEnterprise, rec.PlanType)
		assert.Equal(t, 100000, rec.MaxProducts)
	})

	t.Run("normalizes domains to lower case", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		svc := store.NewService(catalog, &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())

		params := validParams()
		params.Domain = "ACME.Example.COM"
		params.Subdomain = "Acme"
		rec, err := svc.CreateStore(ctx, params)
		require.NoError(t, err)

		assert.Equal(t, "acme.example.com", rec.Domain)
		assert.Equal(t, "acme", rec.Subdomain)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		t.Parallel()

		svc := store.NewService(newFakeCatalog(), &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())

		for _, mutate := range []func(*store.CreateStoreParams){
			func(p *store.CreateStoreParams) { p.Name = "" },
			func(p *store.CreateStoreParams) { p.Domain = "" },
			func(p *store.CreateStoreParams) { p.Subdomain = "" },
		} {
			params := validParams()
			mutate(&params)
			_, err := svc.CreateStore(ctx, params)
			assert.ErrorIs(t, err, store.ErrMissingField)
		}
	})

	t.Run("rejects unknown plan types", func(t *testing.T) {
		t.Parallel()

		svc := store.NewService(newFakeCatalog(), &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())

		params := validParams()
		params.PlanType = "platinum"
		_, err := svc.CreateStore(ctx, params)
		assert.ErrorIs(t, err, store.ErrUnknownPlan)
	})

	t.Run("rejects taken domains", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		catalog.taken["acme"] = true
		svc := store.NewService(catalog, &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())

		_, err := svc.CreateStore(ctx, validParams())
		assert.ErrorIs(t, err, store.ErrDomainTaken)
	})

	t.Run("rolls back the catalog row when provisioning fails", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		pools := &fakeProvisioner{createErr: errors.New("create database failed")}
		svc := store.NewService(catalog, pools, tenant.NewNoOpCache(), testLogger())

		_, err := svc.CreateStore(ctx, validParams())
		require.Error(t, err)

		assert.Empty(t, catalog.records)
		assert.Equal(t, []string{"create", "delete"}, catalog.operations())
		assert.Equal(t, []string{"provision"}, pools.ops)
	})
}

func TestSuspendAndReactivate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seed := func(t *testing.T) (*store.Service, *fakeCatalog, *fakeProvisioner, string) {
		t.Helper()
		catalog := newFakeCatalog()
		pools := &fakeProvisioner{}
		svc := store.NewService(catalog, pools, tenant.NewNoOpCache(), testLogger())
		rec, err := svc.CreateStore(ctx, validParams())
		require.NoError(t, err)
		return svc, catalog, pools, rec.ID
	}

	t.Run("suspend sets status and evicts the pool", func(t *testing.T) {
		t.Parallel()

		svc, catalog, pools, id := seed(t)

		require.NoError(t, svc.SuspendStore(ctx, id, "payment overdue"))

		assert.Equal(t, tenant.SubscriptionSuspended, catalog.records[id].SubscriptionStatus)
		assert.Equal(t, []string{id}, pools.evicted)
	})

	t.Run("reactivate restores the active status", func(t *testing.T) {
		t.Parallel()

		svc, catalog, _, id := seed(t)

		require.NoError(t, svc.SuspendStore(ctx, id, ""))
		require.NoError(t, svc.ReactivateStore(ctx, id))

		assert.Equal(t, tenant.SubscriptionActive, catalog.records[id].SubscriptionStatus)
	})

	t.Run("suspend of an unknown store fails", func(t *testing.T) {
		t.Parallel()

		svc, _, pools, _ := seed(t)

		err := svc.SuspendStore(ctx, "nosuch", "")
		require.ErrorIs(t, err, store.ErrStoreNotFound)
		assert.Empty(t, pools.evicted)
	})
}

func TestChangePlan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("applies the new quotas and evicts the pool", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		pools := &fakeProvisioner{}
		svc := store.NewService(catalog, pools, tenant.NewNoOpCache(), testLogger())
		rec, err := svc.CreateStore(ctx, validParams())
		require.NoError(t, err)

		require.NoError(t, svc.ChangePlan(ctx, rec.ID, store.PlanPremium))

		got := catalog.records[rec.ID]
		assert.Equal(t, store.PlanPremium, got.PlanType)
		assert.Equal(t, 1000, got.MaxProducts)
		assert.Equal(t, []string{rec.ID}, pools.evicted)
	})

	t.Run("rejects unknown plans without touching the catalog", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		svc := store.NewService(catalog, &fakeProvisioner{}, tenant.NewNoOpCache(), testLogger())
		rec, err := svc.CreateStore(ctx, validParams())
		require.NoError(t, err)

		err = svc.ChangePlan(ctx, rec.ID, "platinum")
		require.ErrorIs(t, err, store.ErrUnknownPlan)
		assert.Equal(t, store.PlanBasic, catalog.records[rec.ID].PlanType)
	})
}

func TestDeleteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("deactivates, destroys the database, then drops the row", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		pools := &fakeProvisioner{}
		svc := store.NewService(catalog, pools, tenant.NewNoOpCache(), testLogger())
		rec, err := svc.CreateStore(ctx, validParams())
		require.NoError(t, err)

		require.NoError(t, svc.DeleteStore(ctx, rec.ID))

		assert.NotContains(t, catalog.records, rec.ID)
		assert.Equal(t, []string{rec.ID}, pools.deleted)

		ops := catalog.operations()
		assert.Equal(t, []string{"create", "set_active", "delete"}, ops)
	})

	t.Run("keeps the deactivated row when teardown fails", func(t *testing.T) {
		t.Parallel()

		catalog := newFakeCatalog()
		pools := &fakeProvisioner{deleteErr: errors.New("database busy")}
		svc := store.NewService(catalog, pools, tenant.NewNoOpCache(), testLogger())
		rec, err := svc.CreateStore(ctx, validParams())
		require.NoError(t, err)

		err = svc.DeleteStore(ctx, rec.ID)
		require.Error(t, err)

		got, ok := catalog.records[rec.ID]
		require.True(t, ok)
		assert.False(t, got.Active)
	})
}

func TestServiceInvalidatesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	catalog := newFakeCatalog()
	pools := &fakeProvisioner{}
	cache := tenant.NewInMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })

	svc := store.NewService(catalog, pools, cache, testLogger())
	rec, err := svc.CreateStore(ctx, validParams())
	require.NoError(t, err)

	cache.Set(ctx, rec.ID, rec, testCacheTTL)
	cache.Set(ctx, rec.Subdomain, rec, testCacheTTL)

	require.NoError(t, svc.SuspendStore(ctx, rec.ID, "abuse"))

	_, ok := cache.Get(ctx, rec.ID)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, rec.Subdomain)
	assert.False(t, ok)
}
