package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tempo/internal/analytics"
	"tempo/internal/cache"
	"tempo/internal/ledger"
	"tempo/internal/log"
)

// Server exposes the daily ledger over a JSON API.
type Server struct {
	http.Server
	ledgers     *ledger.Manager
	logger      *log.Logger
	httpLog     *log.StructuredLogger
	rateLimiter *rateLimiter

	// Completed-day analytics are cached per (owner, date); any mutation
	// against a day invalidates its entry.
	summaryCache *cache.LRUCache[analytics.DaySummary]
	cacheManager *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledgers *ledger.Manager, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledgers:      ledgers,
		logger:       logger,
		httpLog:      log.NewStructuredLogger(logger),
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[analytics.DaySummary](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
		startedAt:    time.Now(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/day", s.withMiddleware(s.handleGetDay))
	mux.HandleFunc("POST /api/activities", s.withMiddleware(s.handleCreateActivity))
	mux.HandleFunc("PATCH /api/activities/{id}", s.withMiddleware(s.handleUpdateActivity))
	mux.HandleFunc("DELETE /api/activities/{id}", s.withMiddleware(s.handleDeleteActivity))
	mux.HandleFunc("GET /api/analytics", s.withMiddleware(s.handleAnalytics))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleCategories))

	return s
}

// withMiddleware adds request logging, rate limiting, and security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		s.httpLog.LogHTTPStart(ctx, r, ip)

		// Rate limit writes only; reads are cheap and cached.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
