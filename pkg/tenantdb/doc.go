// Package tenantdb manages the lifecycle of per-store PostgreSQL
// databases and the process-wide cache of their connection pools.
//
// Each store owns one isolated database named <prefix><store_id>
// (store_acme by default), created at onboarding and destroyed with the
// store. At request time the gateway asks the Manager for the store's
// pool; the first request for a store builds the pool, every later
// request hits the cache. Pools are independent across stores, so
// exhaustion in one store never blocks another.
//
// The cached resource is the pool, not a session: every request acquires
// and releases its own connection (or transaction) from the pool, which
// keeps concurrent requests to the same store fully isolated.
//
//	mgr := tenantdb.New(adminPool, cfg.ConnectionString, tenantCfg, log)
//	defer mgr.Close()
//
//	pool, err := mgr.Get(ctx, "acme")
//
// Administrative operations (CreateTenantStore, DeleteTenantStore, Evict)
// emit structured log events with the store id, operation and outcome.
package tenantdb
