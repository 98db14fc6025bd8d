// Package middleware holds the global and route-level Echo middleware:
// request ids, request-scoped logging, New Relic tracing, staff (Clerk) and
// customer (JWT) authentication, the guest cart token and rate limits.
package middleware
