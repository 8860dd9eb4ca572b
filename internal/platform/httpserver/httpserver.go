// Package httpserver builds the gate's http.Server.
package httpserver

import (
	"net/http"
	"time"
)

// Option tunes the server built by New.
type Option func(*http.Server)

// WithWriteTimeout bounds a whole response. It should exceed the collaborator
// timeout so a verification round trip can still be answered.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d
		}
	}
}

// ForCollaborators derives the write timeout from the longest collaborator
// call plus headroom for persistence and settlement publishing.
func ForCollaborators(timeout time.Duration) Option {
	return WithWriteTimeout(2*timeout + 5*time.Second)
}

func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
