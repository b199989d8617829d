// Package redis connects the backend to the Redis instance backing the
// distributed store-record cache. It wraps go-redis with startup retry
// and a health check closure; the cache itself lives in pkg/tenant.
package redis
