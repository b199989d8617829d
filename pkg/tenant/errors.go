package tenant

import "errors"

var (
	// ErrTenantRequired is returned when no store id could be resolved from
	// the request and no default store is configured.
	ErrTenantRequired = errors.New("no store identified in request")

	// ErrTenantNotFound is returned for unknown identifiers and for stores
	// that exist but are deactivated. The two cases are deliberately
	// indistinguishable to callers.
	ErrTenantNotFound = errors.New("store not found")

	// ErrSubscriptionLapsed is returned when a store's subscription no
	// longer permits traffic. Mapped to the same response as
	// ErrTenantNotFound at the gateway boundary.
	ErrSubscriptionLapsed = errors.New("store subscription has expired")

	// ErrMaintenanceMode is returned when a store is temporarily blocked
	// for maintenance and the caller is not on the allow-list.
	ErrMaintenanceMode = errors.New("store is under maintenance")

	// ErrConnectionFailed is returned when the store database connection
	// could not be acquired. This is the only transient category; the
	// gateway retries it with backoff before rejecting.
	ErrConnectionFailed = errors.New("failed to connect to store database")

	// ErrInvalidIdentifier is returned when a resolved identifier fails
	// format validation.
	ErrInvalidIdentifier = errors.New("invalid store identifier")

	// ErrNoTenantInContext is returned when a handler requires a store
	// context that was never established.
	ErrNoTenantInContext = errors.New("no store in context")
)
