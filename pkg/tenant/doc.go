// Package tenant implements multi-store request routing for the admin
// backend: every incoming request is mapped to exactly one store and to
// that store's isolated database before any business handler runs.
//
// # Architecture
//
// Four pieces cooperate per request:
//
//   - Resolver — pure string logic extracting a candidate store id from
//     the override header, the host subdomain, or a /store/{id} path, in
//     that strict priority order.
//
//   - Provider — the shared admin catalog lookup. Unknown and
//     deactivated stores are indistinguishable to callers.
//
//   - ConnectionSource — the process-wide pool cache handing out the
//     pgx pool for a store's database (see pkg/tenantdb).
//
//   - Middleware — the gateway orchestrating resolve → validate →
//     maintenance check → connect, then binding a request-scoped Context
//     that handlers read via FromContext / ConnFromContext.
//
// # Usage
//
//	resolver := tenant.NewDefaultResolver()
//
//	gateway := tenant.Middleware(resolver, provider, pools,
//	    tenant.WithCache(tenant.NewRedisCache(redisClient, "")),
//	    tenant.WithMaintenanceSource(repo),
//	    tenant.WithActivityRecorder(repo),
//	    tenant.WithLogger(log),
//	)
//
//	r := chi.NewRouter()
//	r.Use(gateway)
//	r.Route("/api", func(api chi.Router) {
//	    api.Use(tenant.RequireTenant(nil))
//	    // tenant-scoped handlers
//	})
//
// Inside a handler:
//
//	tc := tenant.MustFromContext(r.Context())
//	rows, err := tc.Conn.Query(r.Context(), "SELECT ...")
//
// Requests matching the skip-list (health checks, static assets, auth
// bootstrap) bypass the gateway entirely and run with no store bound.
//
// # Rejections
//
// Every rejection is a JSON body with a stable machine-readable code:
// TENANT_REQUIRED (400), TENANT_UNAVAILABLE (404), TENANT_MAINTENANCE
// (503, carries the operator message), CONNECTION_FAILED (503, the only
// retried category), INVALID_IDENTIFIER (400).
package tenant
