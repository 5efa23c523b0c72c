// Package httpserver builds the HTTP server for the formation API.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server tuned for this API: header reads are bounded tightly,
// while the write timeout stays generous because a formation run over a large
// pool holds the request open for its full pairwise scoring pass.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
