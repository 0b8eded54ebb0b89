// Package server holds the HTTP server configuration.
//
// The start command reads the listen port and API key from here. An empty API
// key leaves the API unprotected, which is convenient for local runs against
// in-memory regions.
package server
