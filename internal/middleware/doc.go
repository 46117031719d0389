// Package middleware provides HTTP middleware for the command server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - gzip response compression for JSON payloads
package middleware
