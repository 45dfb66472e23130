// Package server holds the HTTP server configuration used by serve mode.
//
// The Config struct defines the HTTP port and the API key protecting the
// sync endpoints. It is embedded by core/config and consumed by cmd/serve.
package server
