package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxIdentifierLength keeps store ids DNS-compatible and bounds the
	// work done on attacker-controlled input.
	MaxIdentifierLength = 63

	// DefaultHeaderName is the override header consulted first by the
	// composite resolver. API clients address a store explicitly with it.
	DefaultHeaderName = "X-Store-ID"

	// DefaultPathPrefix is the path segment that introduces a
	// path-addressed store, as in /store/{id}/api/products.
	DefaultPathPrefix = "store"
)

var (
	// identifierPattern accepts DNS-safe labels: alphanumeric start,
	// hyphens allowed. Validation happens after lower-casing.
	identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

	// ipv4Pattern matches bare IPv4 hosts, which never carry a subdomain.
	ipv4Pattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
)

// Resolver extracts a candidate store identifier from an HTTP request.
// It returns an empty string when the request carries no identifier for
// this resolution method, and an error only for malformed identifiers.
// Resolvers are pure string logic: no I/O, no side effects.
type Resolver func(r *http.Request) (string, error)

func isValidIdentifier(id string) bool {
	if id == "" || len(id) > MaxIdentifierLength {
		return false
	}
	return identifierPattern.MatchString(id)
}

// NewHeaderResolver extracts the store id from a request header.
// Defaults to X-Store-ID when name is empty.
func NewHeaderResolver(name string) Resolver {
	if name == "" {
		name = DefaultHeaderName
	}

	return func(r *http.Request) (string, error) {
		value := strings.ToLower(strings.TrimSpace(r.Header.Get(name)))
		if value == "" {
			return "", nil
		}
		if !isValidIdentifier(value) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewSubdomainResolver extracts the store id from the request host.
//
// Hosts that cannot carry a tenant subdomain yield no candidate: localhost,
// loopback literals and bare IPv4 addresses. A candidate is only taken when
// the host has at least three dot-separated labels (store.example.com), in
// which case the first label is the id.
func NewSubdomainResolver() Resolver {
	return func(r *http.Request) (string, error) {
		host := r.Host
		if host == "" {
			return "", nil
		}

		// Strip port.
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}
		host = strings.ToLower(host)

		if host == "localhost" || host == "127.0.0.1" || host == "::1" || ipv4Pattern.MatchString(host) {
			return "", nil
		}

		parts := strings.Split(host, ".")
		if len(parts) < 3 {
			return "", nil
		}

		subdomain := strings.TrimSpace(parts[0])
		if subdomain == "" {
			return "", nil
		}
		if !isValidIdentifier(subdomain) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, subdomain)
		}
		return subdomain, nil
	}
}

// NewPathResolver extracts the store id from a /{prefix}/{id}/... path.
// Defaults to the "store" prefix when prefix is empty. This is the lowest
// priority fallback for path-addressed stores behind hosts that cannot
// carry a subdomain.
func NewPathResolver(prefix string) Resolver {
	if prefix == "" {
		prefix = DefaultPathPrefix
	}
	prefix = strings.Trim(prefix, "/")

	return func(r *http.Request) (string, error) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		segments := strings.SplitN(path, "/", 3)
		if len(segments) < 2 || segments[0] != prefix {
			return "", nil
		}

		value := strings.ToLower(strings.TrimSpace(segments[1]))
		if value == "" {
			return "", nil
		}
		if !isValidIdentifier(value) {
			return "", fmt.Errorf("%w: path segment %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewCompositeResolver tries resolvers in order and returns the first
// non-empty identifier. Errors from individual resolvers are aggregated
// and surfaced only when no resolver produced a value.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error

		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}

		if len(errs) > 0 {
			return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
		}
		return "", nil
	}
}

// NewDefaultResolver wires the standard priority order: override header,
// then host subdomain, then /store/{id} path fallback.
func NewDefaultResolver() Resolver {
	return NewCompositeResolver(
		NewHeaderResolver(DefaultHeaderName),
		NewSubdomainResolver(),
		NewPathResolver(DefaultPathPrefix),
	)
}
