// Package handler serves the status dashboard. Every request runs a fresh
// probe sweep over the configured service groups and renders the result as
// an HTML table or as JSON; nothing is cached between requests.
package handler
