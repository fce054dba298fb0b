package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"caixa/internal/auth"
	"caixa/internal/cache"
	"caixa/internal/core"
	"caixa/internal/ledger"
	appweb "caixa/web"
)

// Server serves the dashboard and its HTMX partials. Every data-bearing
// route requires a signed-in operator; health probes and static assets do
// not.
type Server struct {
	http.Server
	templates   *template.Template
	svc         *ledger.Service
	auth        auth.Provider
	renderer    ledger.ReportRenderer
	rateLimiter *rateLimiter

	// Goal target is server-owned mutable state, seeded from config and
	// adjustable at runtime via POST /goal.
	goalMu     sync.Mutex
	goalTarget core.Money

	// Per-period caches for the summary and history partials. Purged
	// wholesale on every mutation.
	summaryCache *cache.LRUCache[core.Summary]
	historyCache *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc *ledger.Service, provider auth.Provider, renderer ledger.ReportRenderer, goalTarget core.Money) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:          svc,
		auth:         provider,
		renderer:     renderer,
		rateLimiter:  newRateLimiter(),
		goalTarget:   goalTarget,
		summaryCache: cache.NewLRUCache[core.Summary](8, 30*time.Second),
		historyCache: cache.NewLRUCache[[]core.Transaction](8, 30*time.Second),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.historyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.requireUser(s.handleCreateTransaction)))
	mux.HandleFunc("/transactions/delete", s.withSecurityHeaders(s.requireUser(s.handleDeleteTransaction)))
	mux.HandleFunc("/goal", s.withSecurityHeaders(s.requireUser(s.handleUpdateGoal)))
	mux.HandleFunc("/report.pdf", s.withSecurityHeaders(s.requireUser(s.handleReport)))
	// UI partials
	mux.HandleFunc("/ui/summary", s.withSecurityHeaders(s.requireUser(s.handleSummary)))
	mux.HandleFunc("/ui/history", s.withSecurityHeaders(s.requireUser(s.handleHistory)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", ip,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate-limit mutations only
		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", ip, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", ip)
	}
}

type requestIDKey struct{}

// requireUser gates a handler behind a valid session. Partials get 401 so
// HTMX surfaces the failure; full page loads land on the login form via /.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, auth.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.auth.CurrentUser(r)
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next(w, r, user)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready means the store answers; a tiny snapshot probe covers that.
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if _, err := s.svc.Snapshot(ctx); err != nil {
		slog.ErrorContext(r.Context(), "Readiness probe failed", "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// target returns the current goal target.
func (s *Server) target() core.Money {
	s.goalMu.Lock()
	defer s.goalMu.Unlock()
	return s.goalTarget
}

func (s *Server) setTarget(t core.Money) {
	s.goalMu.Lock()
	defer s.goalMu.Unlock()
	s.goalTarget = t
}

// purgeCaches drops every cached aggregate. Any mutation invalidates all
// periods at once because each period window contains the mutated record
// set.
func (s *Server) purgeCaches() {
	s.summaryCache.Purge()
	s.historyCache.Purge()
}

// snapshotForPeriod fetches the full record set and narrows it to the
// period, with a small timeout to avoid hanging partials.
func (s *Server) snapshotForPeriod(ctx context.Context, period core.Period) ([]core.Transaction, error) {
	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	records, err := s.svc.Snapshot(cctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByPeriod(records, period, time.Now())
}
