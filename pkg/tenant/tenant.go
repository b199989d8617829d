package tenant

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionStatus describes the billing state of a store.
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Record is a snapshot of one store's identity, status and plan limits.
// It is loaded from the shared admin catalog and placed into the request
// context by the gateway middleware; handlers must treat it as read-only.
type Record struct {
	ID                 string             `json:"store_id"`
	Name               string             `json:"store_name"`
	Domain             string             `json:"domain"`
	Subdomain          string             `json:"subdomain"`
	CustomDomain       string             `json:"custom_domain,omitempty"`
	Active             bool               `json:"is_active"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	SubscriptionEnd    *time.Time         `json:"subscription_end,omitempty"`
	PlanType           string             `json:"plan_type"`
	MaxProducts        int                `json:"max_products"`
	MaxStorageMB       int                `json:"max_storage_mb"`
	MaxOrdersPerMonth  int                `json:"max_orders_per_month"`
	LastActivity       time.Time          `json:"last_activity"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// SubscriptionActive reports whether the store may serve traffic at the
// given moment. Trial stores are always allowed; active subscriptions are
// allowed until SubscriptionEnd when one is set.
func (r *Record) SubscriptionActive(now time.Time) bool {
	switch r.SubscriptionStatus {
	case SubscriptionActive:
		if r.SubscriptionEnd != nil {
			return !now.After(*r.SubscriptionEnd)
		}
		return true
	case SubscriptionTrial:
		return true
	default:
		return false
	}
}

// Provider loads store records from the shared admin catalog.
//
// Implementations must return ErrTenantNotFound uniformly for identifiers
// that do not exist AND for stores that exist but are deactivated, so that
// unauthenticated callers cannot probe which store ids are taken.
type Provider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Record, error)
}

// MaintenanceConfig is the per-store maintenance flag set checked by the
// gateway after a record validates. AllowedIPs are exempt from the block.
type MaintenanceConfig struct {
	Enabled    bool     `json:"maintenance_mode"`
	Message    string   `json:"maintenance_message,omitempty"`
	AllowedIPs []string `json:"maintenance_allowed_ips,omitempty"`
}

// Allows reports whether the given client IP may bypass maintenance mode.
func (m *MaintenanceConfig) Allows(ip string) bool {
	for _, allowed := range m.AllowedIPs {
		if allowed == ip {
			return true
		}
	}
	return false
}

// MaintenanceSource reads a store's maintenance configuration. A nil result
// with a nil error means the store has no maintenance settings.
type MaintenanceSource interface {
	Maintenance(ctx context.Context, storeID string) (*MaintenanceConfig, error)
}

// ConnectionSource hands out the pooled connection to a store's isolated
// database. Get must be idempotent: concurrent calls for the same store id
// resolve to the same underlying pool.
type ConnectionSource interface {
	Get(ctx context.Context, storeID string) (*pgxpool.Pool, error)
}

// ActivityRecorder updates a store's last-activity timestamp. The gateway
// calls it asynchronously on every successful resolution; failures are
// logged and never fail the request.
type ActivityRecorder interface {
	TouchActivity(ctx context.Context, storeID string) error
}
