package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/rhuss/vexgate/pkg/api"
	"github.com/rhuss/vexgate/pkg/transport"
)

// Default operational endpoint paths.
const (
	HealthPath = "/healthz"
	ReadyPath  = "/readyz"
)

// ReadinessCheck reports whether a dependency is ready to serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Adapter serves project configurations over HTTP.
//
// Every request is treated as a config read and handed to the Decider,
// whatever the method, except GET and HEAD on an operational path. Those
// are matched exactly and served by the operational handlers.
type Adapter struct {
	decider transport.Decider
	mux     *http.ServeMux
	ops     map[string]bool
	checks  map[string]ReadinessCheck
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// RequestTimeout bounds a single decision, including both store reads.
	// Zero means no deadline beyond the client's own.
	RequestTimeout time.Duration

	// ReadinessTimeout bounds all readiness checks together (default 2s).
	ReadinessTimeout time.Duration

	// MetricsPath mounts MetricsHandler on this path when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:   10 * time.Second,
		ReadinessTimeout: 2 * time.Second,
	}
}

// NewAdapter creates an HTTP adapter for the given Decider.
// Middleware is applied to the Decider in the given order.
func NewAdapter(decider transport.Decider, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		decider = transport.Chain(middlewares...)(decider)
	}
	if cfg.ReadinessTimeout <= 0 {
		cfg.ReadinessTimeout = 2 * time.Second
	}

	a := &Adapter{
		decider: decider,
		mux:     http.NewServeMux(),
		ops:     make(map[string]bool),
		checks:  make(map[string]ReadinessCheck),
		config:  cfg,
	}

	a.handleOp(HealthPath, http.HandlerFunc(a.handleHealth))
	a.handleOp(ReadyPath, http.HandlerFunc(a.handleReady))
	if cfg.MetricsPath != "" && cfg.MetricsHandler != nil {
		a.handleOp(cfg.MetricsPath, cfg.MetricsHandler)
	}

	return a
}

// AddReadinessCheck registers a named check run by the readiness endpoint.
// It must be called before the adapter starts serving.
func (a *Adapter) AddReadinessCheck(name string, check ReadinessCheck) {
	a.checks[name] = check
}

func (a *Adapter) handleOp(path string, h http.Handler) {
	a.ops[path] = true
	a.mux.Handle("GET "+path, h)
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// HTTP-level middleware for request ID propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(http.HandlerFunc(a.route))
}

// route dispatches GET and HEAD on operational paths to the mux and
// everything else to the decision pipeline. Config paths bypass the mux
// so they are never cleaned or redirected.
func (a *Adapter) route(w http.ResponseWriter, r *http.Request) {
	if a.ops[r.URL.Path] && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		a.mux.ServeHTTP(w, r)
		return
	}
	a.handleDecide(w, r)
}

// handleDecide handles a config read: /<projectId>.
func (a *Adapter) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}

	req := api.Request{
		Path:          r.URL.EscapedPath(),
		Authorization: r.Header.Get("Authorization"),
	}

	transport.WriteOutcome(w, a.decider.Decide(ctx, req))
}

// handleHealth handles GET /healthz. It reports liveness only.
func (a *Adapter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// handleReady handles GET /readyz by running every registered check.
// Failure details are logged, not returned.
func (a *Adapter) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.config.ReadinessTimeout)
	defer cancel()

	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	for _, name := range names {
		if err := a.checks[name](ctx); err != nil {
			slog.WarnContext(ctx, "readiness check failed",
				"check", name,
				"request_id", transport.RequestIDFromContext(ctx),
				"error", err.Error(),
			)
			ready = false
		}
	}

	if !ready {
		writeText(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeText(w, http.StatusOK, "ready")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. A client-supplied ID is reused; otherwise a new one
// is generated. The ID is stored in the request context (where the
// transport-level RequestID middleware finds it) and echoed in the
// response headers before the first write.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(transport.RequestIDHeader)
		if id == "" {
			id = transport.NewRequestID()
		}
		r = r.WithContext(transport.ContextWithRequestID(r.Context(), id))

		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set(transport.RequestIDHeader, id)
	}
}
