package tenant

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// contextKey prevents collisions with other packages using context values.
type contextKey struct{}

// Context is the request-scoped view of the resolved store: its id, a
// snapshot of the catalog record, and the pooled connection to its
// isolated database. The gateway creates exactly one per request and it
// is discarded with the request context; it must never be stored or
// shared across requests.
type Context struct {
	Record *Record
	Conn   *pgxpool.Pool
}

// WithContext attaches a resolved store to the request context.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the resolved store from the request context.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok
}

// IDFromContext provides fast access to the store id without exposing the
// full record.
func IDFromContext(ctx context.Context) (string, bool) {
	tc, ok := FromContext(ctx)
	if !ok || tc == nil || tc.Record == nil {
		return "", false
	}
	return tc.Record.ID, true
}

// ConnFromContext returns the pooled connection to the current store's
// database. Handlers scope all data access through it instead of
// re-running resolution.
func ConnFromContext(ctx context.Context) (*pgxpool.Pool, bool) {
	tc, ok := FromContext(ctx)
	if !ok || tc == nil || tc.Conn == nil {
		return nil, false
	}
	return tc.Conn, true
}

// MustFromContext panics if no store is bound. Use only in handlers that
// sit behind RequireTenant.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok || tc == nil {
		panic("tenant: no store in context")
	}
	return tc
}

// LoggerExtractor returns a function that enriches log records with the
// current store id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("store_id", id), true
		}
		return slog.Attr{}, false
	}
}
