package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/multistore/adminkit/modules/store"
	"github.com/multistore/adminkit/pkg/clientip"
	"github.com/multistore/adminkit/pkg/config"
	"github.com/multistore/adminkit/pkg/httpserver"
	"github.com/multistore/adminkit/pkg/logger"
	"github.com/multistore/adminkit/pkg/pg"
	"github.com/multistore/adminkit/pkg/redis"
	"github.com/multistore/adminkit/pkg/requestid"
	"github.com/multistore/adminkit/pkg/tenant"
	"github.com/multistore/adminkit/pkg/tenantdb"
)

type appConfig struct {
	Environment  string `env:"APP_ENV" envDefault:"development"`       // Environment selects logging defaults.
	ServiceName  string `env:"SERVICE_NAME" envDefault:"store-admin"`  // ServiceName tags every log record.
	DefaultStore string `env:"DEFAULT_STORE_ID"`                       // DefaultStore is substituted when no store resolves (development only).
	RedisCache   bool   `env:"REDIS_CACHE_ENABLED" envDefault:"false"` // RedisCache switches the record cache from in-memory to Redis.
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	adminPool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer adminPool.Close()

	if err := pg.Migrate(ctx, adminPool, pgCfg, log); err != nil {
		return err
	}

	var tdbCfg tenantdb.Config
	config.MustLoad(&tdbCfg)

	pools := tenantdb.New(adminPool, pgCfg.ConnectionString, tdbCfg, log)
	defer pools.Close()

	healthchecks := []func(context.Context) error{pg.Healthcheck(adminPool)}

	var recordCache tenant.Cache
	if appCfg.RedisCache {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		recordCache = tenant.NewRedisCache(redisClient, "")
		healthchecks = append(healthchecks, redis.Healthcheck(redisClient))
	} else {
		recordCache = tenant.NewInMemoryCache()
	}
	defer recordCache.Close()

	repo := store.NewRepository(adminPool)
	svc := store.NewService(repo, pools, recordCache, log)

	gatewayOpts := []tenant.Option{
		tenant.WithCache(recordCache),
		tenant.WithMaintenanceSource(repo),
		tenant.WithActivityRecorder(repo),
		tenant.WithLogger(log),
		tenant.WithClientIPFunc(func(r *http.Request) string {
			// The clientip middleware already ran; reuse its result.
			return clientip.GetIPFromContext(r.Context())
		}),
	}
	if appCfg.DefaultStore != "" {
		gatewayOpts = append(gatewayOpts, tenant.WithDefaultStore(appCfg.DefaultStore))
	}

	gateway := tenant.Middleware(
		tenant.NewDefaultResolver(),
		repo,
		pools,
		gatewayOpts...,
	)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, healthchecks...))

	// Tenant lifecycle surface: operates ON stores, never inside one.
	r.Mount("/api/admin", store.Router(svc))

	// Everything else runs behind the gateway with a store bound.
	r.Group(func(tenantAPI chi.Router) {
		tenantAPI.Use(gateway)
		tenantAPI.Use(tenant.RequireTenant(nil))

		tenantAPI.Get("/api/store", currentStore)
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// currentStore echoes the resolved store record; business handlers hang
// off the same subtree and read the context the same way.
func currentStore(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(tc.Record)
}
