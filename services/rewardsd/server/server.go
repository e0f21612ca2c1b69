// Package server exposes the reward ledger over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"rewardledger/core/state"
	"rewardledger/integrations/auditsink"
	"rewardledger/native/credits"
	"rewardledger/native/rewards"
	"rewardledger/observability/metrics"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 1 << 16

	// HeaderRequestID echoes or assigns a request identifier.
	HeaderRequestID = "X-Request-ID"
)

// Config defines HTTP server parameters.
type Config struct {
	ListenAddress string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	RateLimit     RateLimit
}

// Server hosts the public read API, the participant and accruer endpoints and
// the administrative surface.
type Server struct {
	cfg     Config
	engine  *rewards.Engine
	store   *state.Store
	credits *credits.Ledger
	audit   *auditsink.Sink
	auth    *Authenticator
	limiter *RateLimiter
	logger  *slog.Logger
	metrics *metrics.HTTPMetrics
	handler http.Handler
}

// Option customises optional server collaborators.
type Option func(*Server)

// WithAuditSink enables the audit query endpoint.
func WithAuditSink(sink *auditsink.Sink) Option {
	return func(s *Server) { s.audit = sink }
}

// WithLogger overrides the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a server. engine, store, ledger and auth are required.
func New(cfg Config, engine *rewards.Engine, store *state.Store, ledger *credits.Ledger, auth *Authenticator, opts ...Option) (*Server, error) {
	switch {
	case engine == nil:
		return nil, fmt.Errorf("server: rewards engine required")
	case store == nil:
		return nil, fmt.Errorf("server: state store required")
	case ledger == nil:
		return nil, fmt.Errorf("server: credits ledger required")
	case auth == nil:
		return nil, fmt.Errorf("server: authenticator required")
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		credits: ledger,
		auth:    auth,
		limiter: NewRateLimiter(cfg.RateLimit),
		logger:  slog.Default(),
		metrics: metrics.HTTP(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.limiter.onReject = s.metrics.RecordThrottle
	s.handler = otelhttp.NewHandler(s.routes(), "rewardsd")
	return s, nil
}

// Handler returns the instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Group(func(pub chi.Router) {
			pub.Use(s.limiter.Middleware)
			pub.Get("/epochs/current", s.handleCurrentEpoch)
			pub.Get("/epochs/{epoch}", s.handleEpoch)
			pub.Get("/epochs/{epoch}/users/{address}", s.handleUserEpoch)
			pub.Get("/credits/{address}", s.handleCreditsBalance)
			pub.Get("/instruments/{address}", s.handleHoldings)
		})
		v1.Group(func(authed chi.Router) {
			authed.Use(s.auth.Middleware)
			authed.Use(s.limiter.Middleware)
			authed.Post("/accrue", s.handleAccrue)
			authed.Post("/claims", s.handleClaim)
			authed.Post("/credits/mint", s.handleCreditsMint)
			authed.Post("/credits/burn", s.handleCreditsBurn)
			authed.Route("/admin", func(admin chi.Router) {
				admin.Post("/initialize", s.handleInitialize)
				admin.Put("/rewards/{epoch}", s.handleSetReward)
				admin.Post("/epochs", s.handleRegisterEpoch)
				admin.Put("/blocklist/{address}", s.handleBlock)
				admin.Delete("/blocklist/{address}", s.handleUnblock)
				admin.Get("/events", s.handleEventLog)
				admin.Get("/audit", s.handleAudit)
			})
		})
	})
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.cfg.ListenAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		s.metrics.Observe(route, r.Method, rec.status, time.Since(start))
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("requestId", w.Header().Get(HeaderRequestID)),
		)
	})
}
