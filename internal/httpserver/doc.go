// Package httpserver wraps http.Server with address validation, sane
// timeouts and graceful shutdown.
package httpserver
