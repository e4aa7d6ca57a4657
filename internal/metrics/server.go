package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Prometheus gatherer over HTTP at /metrics. It is only
// constructed when a caller has a non-empty address to bind to.
type Server struct {
	http *http.Server
}

// NewServer builds a /metrics server for gatherer bound to addr.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{http: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the server in a background goroutine and returns a channel that
// receives at most one error if ListenAndServe fails for a reason other than
// the server being shut down. The server is stopped gracefully once ctx is
// done.
func (s *Server) Start(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		<-ctx.Done()
		s.http.Shutdown(context.Background())
	}()
	return errCh
}
