package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/insight-journal/internal/config"
	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/logging"
	"github.com/jonathan/insight-journal/internal/newsletter"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/server/middleware"
	"github.com/jonathan/insight-journal/internal/server/ratelimit"
	"github.com/jonathan/insight-journal/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       *store.Store
	catalog     *pillars.Catalog
	generation  *generation.Service
	assembler   *newsletter.Assembler
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	corsOrigins []string
	validate    *validator.Validate
	logger      *zap.Logger
}

// Deps are the collaborators the API serves.
type Deps struct {
	Store      *store.Store
	Catalog    *pillars.Catalog
	Generation *generation.Service
	Assembler  *newsletter.Assembler
	Logger     *zap.Logger
}

// New creates a new server instance. Auth is enabled when the config carries a passphrase hash.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Catalog == nil || deps.Generation == nil || deps.Assembler == nil {
		return nil, fmt.Errorf("server requires store, catalog, generation and assembler")
	}

	s := &Server{
		store:       deps.Store,
		catalog:     deps.Catalog,
		generation:  deps.Generation,
		assembler:   deps.Assembler,
		corsOrigins: cfg.Server.CORSOrigins,
		validate:    validator.New(),
		logger:      logging.OrNop(deps.Logger),
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.NewConfig(cfg.Server.RateLimit, cfg.Server.RateBurst))

	if cfg.Auth.Enabled() {
		jwtConfig, err := cfg.Auth.JWT()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		passwordConfig, err := cfg.Auth.Password()
		if err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
		s.jwtService = NewJWTService(jwtConfig)
		s.authHandler = NewAuthHandler(cfg.Auth.PassphraseHash, passwordConfig, s.jwtService, s.logger)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.authHandler != nil {
		mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	}

	// Catalog
	mux.Handle("GET /options", s.protect(s.handleOptions))
	mux.Handle("GET /pillars", s.protect(s.handleListPillars))
	mux.Handle("GET /pillars/{id}", s.protect(s.handleGetPillar))

	// Insights
	mux.Handle("GET /insights", s.protect(s.handleListInsights))
	mux.Handle("POST /insights", s.protect(s.handleCreateInsight))
	mux.Handle("GET /insights/{id}", s.protect(s.handleGetInsight))

	// Generation
	mux.Handle("POST /pillars/{id}/generate", s.protect(s.handleGenerateInsight))
	mux.Handle("POST /insights/generate-all", s.protect(s.handleGenerateAll))
	mux.Handle("POST /narratives", s.protect(s.handleSynthesizeNarrative))
	mux.Handle("GET /generation", s.protect(s.handleListSlots))
	mux.Handle("GET /generation/{slot}", s.protect(s.handleGetSlot))

	// Newsletter
	mux.Handle("GET /newsletter/eligible", s.protect(s.handleEligible))
	mux.Handle("POST /newsletter/research", s.protect(s.handleResearch))
	mux.Handle("POST /newsletter/curate", s.protect(s.handleCurate))
	mux.Handle("POST /newsletter/export", s.protect(s.handleExport))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // grounded research and batch streams run long
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr), zap.Bool("auth", s.jwtService != nil))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// protect requires a bearer token when auth is enabled.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if s.jwtService == nil {
		return h
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h)
}

// withCORS adds CORS headers for the configured origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(s.corsOrigins, "*") || slices.Contains(s.corsOrigins, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it with a machine-readable code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, map[string]string{
		"error":   errorCode(err),
		"message": err.Error(),
	})
}

// decode reads a JSON body into v and validates its struct tags. An empty body
// leaves v at its zero value.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ErrValidation{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Tag()}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := max(1, int(info.RetryAfter.Round(time.Second).Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
