package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storeIDPattern bounds what may ever reach DDL or a connection string.
var storeIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

const maxStoreIDLength = 63

// AdminConn is the slice of the admin catalog pool needed for database
// provisioning. *pgxpool.Pool satisfies it.
type AdminConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Manager is the process-wide cache of per-store connection pools, keyed
// by store id. It also owns creation and destruction of store databases,
// whose names derive deterministically from the id (<prefix><id>), so the
// cache key and the physical database name are always derivable from one
// another.
//
// Reads take the shared lock; the insert and evict paths take the
// exclusive lock, with per-key construction serialized through sync.Once
// so a thundering herd of first requests builds exactly one pool.
type Manager struct {
	cfg      Config
	admin    AdminConn
	baseConn string
	log      *slog.Logger

	mu     sync.RWMutex
	pools  map[string]*poolEntry
	closed bool

	// newPool is swapped out in tests to avoid real database connections.
	newPool func(ctx context.Context, dbName string) (*pgxpool.Pool, error)
}

type poolEntry struct {
	once sync.Once
	pool *pgxpool.Pool
	err  error
}

// New creates a Manager. baseConnString is the admin catalog connection
// string; store pools reuse its host, credentials and TLS settings with
// only the database name swapped.
func New(admin AdminConn, baseConnString string, cfg Config, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		cfg:      cfg,
		admin:    admin,
		baseConn: baseConnString,
		log:      log,
		pools:    make(map[string]*poolEntry),
	}
	m.newPool = m.buildPool
	return m
}

// Get returns the pooled connection for a store's database, constructing
// it on first use. Idempotent: N concurrent calls for the same id yield N
// references to one pool.
func (m *Manager) Get(ctx context.Context, storeID string) (*pgxpool.Pool, error) {
	if err := validateStoreID(storeID); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e := m.pools[storeID]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return nil, ErrManagerClosed
	}

	if e == nil {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrManagerClosed
		}
		if e = m.pools[storeID]; e == nil {
			e = &poolEntry{}
			m.pools[storeID] = e
		}
		m.mu.Unlock()
	}

	e.once.Do(func() {
		e.pool, e.err = m.newPool(ctx, m.DatabaseName(storeID))
		if e.err == nil {
			m.log.InfoContext(ctx, "store pool created",
				slog.String("store_id", storeID),
				slog.String("operation", "pool_create"),
				slog.String("outcome", "success"),
			)
		}
	})

	if e.err != nil {
		// Drop the failed entry so a later request can retry the build.
		m.mu.Lock()
		if m.pools[storeID] == e {
			delete(m.pools, storeID)
		}
		m.mu.Unlock()
		return nil, errors.Join(ErrPoolUnavailable, e.err)
	}

	return e.pool, nil
}

// Evict drops the cached pool for a store without touching the database
// itself. Used on suspension and on plan changes that invalidate pooling
// parameters. Safe to call concurrently with Get for the same key: after
// Evict returns, no new handle is issued from the evicted slot; a pool
// already handed out stays usable until its connections are released,
// then is closed in the background.
func (m *Manager) Evict(storeID string) {
	m.mu.Lock()
	e := m.pools[storeID]
	delete(m.pools, storeID)
	m.mu.Unlock()

	if e == nil {
		return
	}

	go func(e *poolEntry) {
		// Wait out any in-flight construction before closing.
		e.once.Do(func() { e.err = ErrManagerClosed })
		if e.pool != nil {
			e.pool.Close()
		}
	}(e)

	m.log.Info("store pool evicted",
		slog.String("store_id", storeID),
		slog.String("operation", "pool_evict"),
		slog.String("outcome", "success"),
	)
}

// Close evicts every pool and rejects future Get calls. Called once at
// process shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	entries := m.pools
	m.pools = make(map[string]*poolEntry)
	m.mu.Unlock()

	for _, e := range entries {
		e.once.Do(func() { e.err = ErrManagerClosed })
		if e.pool != nil {
			e.pool.Close()
		}
	}
}

// DatabaseName returns the deterministic database name for a store id.
func (m *Manager) DatabaseName(storeID string) string {
	prefix := m.cfg.DatabasePrefix
	if prefix == "" {
		prefix = "store_"
	}
	return prefix + storeID
}

func (m *Manager) buildPool(ctx context.Context, dbName string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(m.baseConn)
	if err != nil {
		return nil, err
	}
	poolCfg.ConnConfig.Database = dbName
	poolCfg.MaxConns = m.cfg.MaxOpenConns
	poolCfg.MinConns = m.cfg.MaxIdleConns
	poolCfg.HealthCheckPeriod = m.cfg.HealthCheckPeriod
	poolCfg.MaxConnIdleTime = m.cfg.MaxConnIdleTime
	poolCfg.MaxConnLifetime = m.cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	// Pre-use liveness check: never cache a pool that cannot reach its
	// database.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func validateStoreID(storeID string) error {
	if storeID == "" || len(storeID) > maxStoreIDLength || !storeIDPattern.MatchString(storeID) {
		return fmt.Errorf("%w: %q", ErrInvalidStoreID, storeID)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
