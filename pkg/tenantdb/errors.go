package tenantdb

import "errors"

var (
	// ErrInvalidStoreID is returned before any identifier reaches DDL or a
	// connection string.
	ErrInvalidStoreID = errors.New("invalid store id")

	// ErrPoolUnavailable is returned when a store pool could not be
	// constructed or pinged.
	ErrPoolUnavailable = errors.New("store database pool unavailable")

	// ErrProvisioningFailed is returned when creating or destroying a
	// store database fails. Administrative callers surface it directly.
	ErrProvisioningFailed = errors.New("store database provisioning failed")

	// ErrManagerClosed is returned after Close; no new pools are issued.
	ErrManagerClosed = errors.New("tenant pool manager is closed")
)
