package store

import "errors"

var (
	// ErrStoreNotFound is returned by administrative lookups. Unlike the
	// gateway's uniform rejection, admin callers are authenticated and may
	// see the distinction.
	ErrStoreNotFound = errors.New("store not found")

	// ErrDomainTaken is returned when the domain, subdomain or custom
	// domain is already registered to another store.
	ErrDomainTaken = errors.New("domain is already in use")

	// ErrUnknownPlan is returned for a plan type outside the catalog.
	ErrUnknownPlan = errors.New("unknown plan type")

	// ErrMissingField is returned when required onboarding fields are
	// absent.
	ErrMissingField = errors.New("missing required field")
)
