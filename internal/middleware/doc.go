// Package middleware provides HTTP middleware for the metrics endpoint.
//
// Requests are logged at debug level with user-controlled fields stripped
// of control characters, and counted by route and status.
package middleware
