// Package requestid assigns a correlation id to every incoming request
// and propagates it through context and structured logs.
//
// A client-supplied X-Request-ID header is reused when it validates;
// anything else is replaced with a fresh UUID. The chosen id is echoed
// back in the response header so callers can quote it when reporting
// problems.
package requestid
