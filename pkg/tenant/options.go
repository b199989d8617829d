package tenant

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/multistore/adminkit/pkg/clientip"
)

// ErrorHandler terminates a rejected request with a response. It receives
// one of the package sentinel errors (possibly wrapped).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds gateway middleware configuration.
type config struct {
	cache          Cache
	cacheTTL       time.Duration
	skipPaths      []string
	defaultStore   string
	lookupTimeout  time.Duration
	connectTimeout time.Duration
	connectRetries int
	connectBackoff time.Duration
	maintenance    MaintenanceSource
	activity       ActivityRecorder
	errorHandler   ErrorHandler
	logger         *slog.Logger
	clientIP       func(*http.Request) string
}

// DefaultSkipPaths are the request path prefixes exempt from resolution:
// health probes, static assets and auth bootstrap endpoints that must work
// before any store is bound.
var DefaultSkipPaths = []string{
	"/health",
	"/metrics",
	"/static/",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
	"/api/auth/",
}

func defaultGatewayConfig() *config {
	return &config{
		cache:          NewInMemoryCache(),
		cacheTTL:       5 * time.Minute,
		skipPaths:      DefaultSkipPaths,
		lookupTimeout:  5 * time.Second,
		connectTimeout: 5 * time.Second,
		connectRetries: 2,
		connectBackoff: 100 * time.Millisecond,
		errorHandler:   DefaultErrorHandler,
		clientIP:       clientip.GetIP,
	}
}

// Option configures the gateway middleware.
type Option func(*config)

// WithCache sets a custom record cache implementation.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets how long resolved records stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithSkipPaths replaces the default skip-list of path prefixes that
// bypass resolution entirely.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithDefaultStore substitutes the given store id when no identifier can
// be resolved from the request. Intended for development and single-store
// deployments; off by default.
func WithDefaultStore(id string) Option {
	return func(c *config) {
		c.defaultStore = id
	}
}

// WithLookupTimeout bounds the catalog lookup per request.
func WithLookupTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.lookupTimeout = d
		}
	}
}

// WithConnectTimeout bounds each pool acquisition attempt.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}

// WithConnectRetry sets how many extra acquisition attempts are made, and
// the base backoff between them, before a connection failure is surfaced.
// Connection acquisition is the only retried stage: its failures are
// transient infrastructure faults, not policy decisions.
func WithConnectRetry(retries int, backoff time.Duration) Option {
	return func(c *config) {
		if retries >= 0 {
			c.connectRetries = retries
		}
		if backoff > 0 {
			c.connectBackoff = backoff
		}
	}
}

// WithMaintenanceSource enables the per-store maintenance check.
func WithMaintenanceSource(src MaintenanceSource) Option {
	return func(c *config) {
		c.maintenance = src
	}
}

// WithActivityRecorder enables best-effort last-activity updates on
// successful resolution.
func WithActivityRecorder(rec ActivityRecorder) Option {
	return func(c *config) {
		c.activity = rec
	}
}

// WithErrorHandler sets a custom rejection writer.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClientIPFunc overrides how the caller address is derived for the
// maintenance allow-list check.
func WithClientIPFunc(fn func(*http.Request) string) Option {
	return func(c *config) {
		if fn != nil {
			c.clientIP = fn
		}
	}
}
