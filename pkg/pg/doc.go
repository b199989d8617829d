// Package pg bootstraps the connection to the shared admin catalog on
// PostgreSQL via pgx/v5: pool construction with startup retry, schema
// migrations through goose, a health check closure, and error
// classification helpers used by the catalog repository.
//
// Per-store databases are managed separately by pkg/tenantdb; this
// package only concerns itself with the catalog every request validates
// against.
package pg
