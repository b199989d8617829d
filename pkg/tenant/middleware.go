package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Middleware creates the gateway that runs once per incoming request:
// resolve the store id, validate the catalog record, acquire the pooled
// connection to the store's database, and bind everything to the request
// context. Requests matching the skip-list pass through with no store
// bound; any failure terminates the request before handlers run.
func Middleware(resolver Resolver, provider Provider, conns ConnectionSource, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultGatewayConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(discardHandler{})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolver(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				if cfg.defaultStore == "" {
					cfg.errorHandler(w, r, ErrTenantRequired)
					return
				}
				identifier = cfg.defaultStore
			}

			record, err := lookup(r.Context(), cfg, provider, identifier)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if !record.SubscriptionActive(time.Now().UTC()) {
				// Same response shape as an unknown store on purpose.
				cfg.errorHandler(w, r, ErrSubscriptionLapsed)
				return
			}

			if cfg.maintenance != nil {
				if err := checkMaintenance(r, cfg, record.ID); err != nil {
					cfg.errorHandler(w, r, err)
					return
				}
			}

			conn, err := acquire(r.Context(), cfg, conns, record.ID)
			if err != nil {
				cfg.logger.ErrorContext(r.Context(), "store connection acquisition failed",
					slog.String("store_id", record.ID),
					slog.Any("error", err),
				)
				cfg.errorHandler(w, r, errors.Join(ErrConnectionFailed, err))
				return
			}

			if cfg.activity != nil {
				go touchActivity(cfg, record.ID)
			}

			ctx := WithContext(r.Context(), &Context{Record: record, Conn: conn})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// lookup consults the cache and then the catalog, with a bounded wait.
// The cached record is re-validated so a store suspended after being
// cached is still rejected within the cache TTL window.
func lookup(ctx context.Context, cfg *config, provider Provider, identifier string) (*Record, error) {
	if cached, ok := cfg.cache.Get(ctx, identifier); ok {
		if !cached.Active {
			return nil, ErrTenantNotFound
		}
		return cached, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, cfg.lookupTimeout)
	defer cancel()

	record, err := provider.GetByIdentifier(lookupCtx, identifier)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if !record.Active {
		return nil, ErrTenantNotFound
	}

	cfg.cache.Set(ctx, identifier, record, cfg.cacheTTL)

	return record, nil
}

func checkMaintenance(r *http.Request, cfg *config, storeID string) error {
	mc, err := cfg.maintenance.Maintenance(r.Context(), storeID)
	if err != nil {
		// Missing settings must not take the store down; the flag simply
		// does not apply.
		cfg.logger.WarnContext(r.Context(), "maintenance config lookup failed",
			slog.String("store_id", storeID),
			slog.Any("error", err),
		)
		return nil
	}
	if mc == nil || !mc.Enabled {
		return nil
	}
	if mc.Allows(cfg.clientIP(r)) {
		return nil
	}
	return &MaintenanceError{Message: mc.Message}
}

// acquire obtains the store's pooled connection with bounded retry and
// linear backoff. Pool exhaustion and brief database outages are the only
// transient failures in the gateway, so this is the only retried stage.
func acquire(ctx context.Context, cfg *config, conns ConnectionSource, storeID string) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.connectRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * cfg.connectBackoff):
			}
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.connectTimeout)
		pool, err := conns.Get(connectCtx, storeID)
		cancel()
		if err == nil {
			return pool, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func touchActivity(cfg *config, storeID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cfg.activity.TouchActivity(ctx, storeID); err != nil {
		cfg.logger.WarnContext(ctx, "last activity update failed",
			slog.String("store_id", storeID),
			slog.Any("error", err),
		)
	}
}

// RequireTenant ensures a store is bound before the wrapped handlers run.
// Mount it on subtrees that must never execute without a store, e.g. the
// tenant-scoped API.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// discardHandler is a slog.Handler that drops all records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
