package diagnostics

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slonegd/go61850report/internal/logging"
)

// Server is the opt-in metrics/health HTTP endpoint a Session can start
// alongside its protocol traffic, routed with gorilla/mux the way
// glennswest-ipmiserial/server.Server sets up its API subrouter.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

// NewServer builds a Server listening on addr, serving /healthz and
// /metrics (the registry's collectors, via promhttp.Handler).
func NewServer(addr string, registry *prometheus.Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNoop()
	}
	router := mux.NewRouter()
	router.HandleFunc("/healthz", handleHealthz).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: router},
		logger:     logger,
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Start runs the HTTP server in the background until ctx is canceled,
// then shuts it down gracefully. Errors other than the expected
// http.ErrServerClosed are logged, not returned — a diagnostics outage
// must never take the protocol session down with it.
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("diagnostics: http server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.httpServer.Shutdown(context.Background())
	}()
}
