// Package httpserver builds the API's http.Server.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for batch assembly, which is
// the slowest request the API serves.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    64 << 10,
	}
}
