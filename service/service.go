// Package service exposes the registry functions over HTTP.
package service

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/callbacks"
	"github.com/effective-security/functic/pkg/metricskey"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xdb/pkg/flake"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "service")

// DefaultMaxBody is the default limit of the request body.
const DefaultMaxBody = 1 << 20

// HeaderRequestID is the header with the request ID.
const HeaderRequestID = "X-Request-ID"

// Config configures the Service.
type Config struct {
	Registry *tools.Registry
	// MaxBody is the limit of the request body, 1 MiB by default
	MaxBody int64
	// Scratchpad records the tool calls of each request, optional
	Scratchpad *callbacks.Scratchpad
}

// Service is the HTTP API over the functions registry.
type Service struct {
	registry   *tools.Registry
	maxBody    int64
	scratchpad *callbacks.Scratchpad
}

// New returns the service.
func New(cfg Config) *Service {
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	registry := cfg.Registry
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &Service{
		registry:   registry,
		maxBody:    maxBody,
		scratchpad: cfg.Scratchpad,
	}
}

// Handler returns the http.Handler with the routes and the middleware.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = s.maxBodyMiddleware(handler)
	handler = s.requestMiddleware(handler)
	return handler
}

// RegisterRoutes mounts the routes onto the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /functions", s.handleListFunctions)
	mux.HandleFunc("GET /functions/{function_name}", s.handleGetFunction)
	mux.HandleFunc("POST /functions/invoke", s.handleInvokeFunction)
	mux.HandleFunc("POST /assistant/tool_call", s.handleToolCall)
	mux.HandleFunc("POST /assistant/tool_calls", s.handleToolCalls)
}

// ListenAndServe serves the API on addr, until the context is done.
func (s *Service) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %q", addr)
	}
	return s.Serve(ctx, lis)
}

// Serve serves the API on the listener, until the context is done.
func (s *Service) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO,
			"status", "listening",
			"addr", lis.Addr().String(),
			"functions", s.registry.Len(),
		)
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shutdown")
	}
	logger.KV(xlog.INFO, "status", "stopped")
	return nil
}

func newRunID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}

// --- Middleware ---

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Service) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = newRunID()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := callbacks.WithRunID(r.Context(), requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		metricskey.StatsHTTPRequests.IncrCounter(1, r.Method, strconv.Itoa(sw.status))
		metricskey.PerfHTTPRequest.MeasureSince(started, r.Method)
		logger.ContextKV(ctx, xlog.DEBUG,
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(started).String(),
		)
	})
}

func (s *Service) maxBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}
