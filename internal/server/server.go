package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/export"
	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/server/middleware"
	"github.com/jonathan/strategy-report/internal/server/ratelimit"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// maxBodyBytes caps request bodies; framework payloads are the largest.
const maxBodyBytes = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	handler      http.Handler
	backend      backend.Backend
	wizard       *wizard.Manager
	exporter     export.Exporter
	jwtService   *JWTService
	rateLimiter  *ratelimit.Limiter
	guard        *workflow.InFlight
	origin       string
	stageTimeout time.Duration
	onShutdown   func()
}

// Config holds server configuration
type Config struct {
	Port               int
	PublicOrigin       string
	StageChangeTimeout time.Duration
	// RateLimit defaults to ratelimit.LoadConfig() when nil.
	RateLimit *ratelimit.Config
}

// Deps are the collaborators the handlers call. Wizard and Exporter are
// optional; their routes answer 503 when unset.
type Deps struct {
	Backend    backend.Backend
	Wizard     *wizard.Manager
	Exporter   export.Exporter
	JWT        *JWTService
	OnShutdown func()
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	if err := report.ValidateMappings(report.PageMappings); err != nil {
		return nil, fmt.Errorf("invalid page table: %w", err)
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	s := &Server{
		backend:      deps.Backend,
		wizard:       deps.Wizard,
		exporter:     deps.Exporter,
		jwtService:   deps.JWT,
		rateLimiter:  ratelimit.NewLimiter(rl),
		guard:        workflow.NewInFlight(),
		origin:       cfg.PublicOrigin,
		stageTimeout: cfg.StageChangeTimeout,
		onShutdown:   deps.OnShutdown,
	}

	auth := middleware.AuthMiddleware(deps.JWT.AsTokenValidator())
	authed := func(h http.HandlerFunc) http.Handler { return auth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return auth(middleware.RequireAdmin(h)) }

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /report/{code}", s.handlePublicReport)

	// Authenticated
	mux.Handle("GET /submissions", authed(s.handleListSubmissions))
	mux.Handle("GET /submissions/{id}", authed(s.handleDashboard))
	mux.Handle("GET /submissions/{id}/report", authed(s.handleReportHTML))
	mux.Handle("GET /submissions/{id}/report/pages", authed(s.handleReportPages))
	mux.Handle("GET /pages", authed(s.handlePageMappings))
	mux.Handle("GET /frameworks/{key}/pages", authed(s.handleFrameworkPages))

	// Stage changes
	mux.Handle("GET /submissions/{id}/stage", admin(s.handleGetStage))
	mux.Handle("POST /submissions/{id}/stage/preview", admin(s.handlePreviewStage))
	mux.Handle("POST /submissions/{id}/stage", admin(s.handleChangeStage))

	// War Room
	mux.Handle("PUT /submissions/{id}/frameworks/{key}", admin(s.handlePutFramework))
	mux.Handle("DELETE /submissions/{id}/frameworks/{key}", admin(s.handleDeleteFramework))
	mux.Handle("POST /submissions/{id}/swot/{quadrant}/items", admin(s.handleAddSwotItem))
	mux.Handle("PUT /submissions/{id}/swot/{quadrant}/items/{index}", admin(s.handleUpdateSwotItem))
	mux.Handle("DELETE /submissions/{id}/swot/{quadrant}/items/{index}", admin(s.handleDeleteSwotItem))
	mux.Handle("POST /analyses/{id}/blur", admin(s.handleSetBlur))
	mux.Handle("POST /analyses/{id}/share", admin(s.handleShare))
	mux.Handle("GET /submissions/{id}/report.pdf", admin(s.handleReportPDF))

	// Wizard
	mux.Handle("GET /wizard/{analysis_id}", admin(s.handleWizardState))
	mux.Handle("POST /wizard/{analysis_id}/start", admin(s.handleWizardStart))
	mux.Handle("POST /wizard/{analysis_id}/generate", admin(s.handleWizardGenerate))
	mux.Handle("POST /wizard/{analysis_id}/refine", admin(s.handleWizardRefine))
	mux.Handle("POST /wizard/{analysis_id}/retry", admin(s.handleWizardRetry))
	mux.Handle("POST /wizard/{analysis_id}/approve", admin(s.handleWizardApprove))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 360 * time.Second, // wizard generation can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and the shutdown hook.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.onShutdown != nil {
		s.onShutdown()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.Method, r.URL.Path)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
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
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorBody is the error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeError maps err to a status and writes the error envelope. Server-side
// failures are logged and their message is not echoed.
func (s *Server) writeError(w http.ResponseWriter, err error, details any) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		msg = "internal error"
	}
	s.jsonResponse(w, status, errorBody{Error: msg, Details: details})
}

// decodeBody decodes a JSON request body into dst. An empty body is accepted
// when optional is set.
func decodeBody(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr.
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
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] %s exhausted: limit=%d reset=%s",
		info.Route, info.Limit, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// isAdmin reports whether the request carries an admin principal.
func isAdmin(r *http.Request) bool {
	p, err := middleware.GetPrincipal(r)
	return err == nil && middleware.IsAdmin(p)
}
