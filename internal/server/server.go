// Package server assembles the campus HTTP API: the record resources behind
// authentication, plus health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/campus/internal/authz"
	"github.com/mesh-intelligence/campus/internal/records"
	kithttp "github.com/mesh-intelligence/campus/internal/transport/http"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// shutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// Server serves the campus API on one address.
type Server struct {
	log     *zap.Logger
	addr    string
	handler http.Handler
}

// New builds the API over repo. Bearer tokens are checked with verifier.
func New(addr string, repo types.Repository, verifier authz.Verifier, log *zap.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		kithttp.LoggingMW(log),
		kithttp.Metrics("api", kithttp.NewRequestMetrics(reg)),
		middleware.Recoverer,
	)

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(authz.Authenticate(verifier, log))
		for _, h := range records.New(repo, log, reg).Handlers() {
			r.Mount(h.Prefix(), h)
		}
	})

	return &Server{
		log:     log,
		addr:    addr,
		handler: gziphandler.GzipHandler(r),
	}
}

// Handler returns the root handler of the API.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("Listening", zap.String("transport", "http"), zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("Stopping", zap.String("transport", "http"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"name":"campus","message":"ready for queries and writes","status":"pass"}` + "\n"))
}
