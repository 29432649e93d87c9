package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/aceteam-ai/modulus-cli/internal/model"
	"github.com/aceteam-ai/modulus-cli/internal/predict"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Server provides the prediction HTTP API.
type Server struct {
	registry   *predict.Registry
	port       int
	version    string
	log        logrus.FieldLogger
	limiter    *RateLimiter
	httpServer *http.Server
}

// Config holds configuration for the server.
type Config struct {
	Port           int     // HTTP server port (default: 8080)
	Version        string  // modulus version string
	RateLimitRPS   float64 // per-IP requests per second (default: 5)
	RateLimitBurst int     // per-IP burst (default: 10)
	Logger         logrus.FieldLogger
}

// New creates a server over the given registry.
func New(cfg Config, registry *predict.Registry) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 5
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Server{
		registry: registry,
		port:     cfg.Port,
		version:  cfg.Version,
		log:      cfg.Logger,
		limiter:  NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the routed handler with logging and rate limiting.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/variants", s.rateLimited(s.handleVariants))
	mux.HandleFunc("/predict/", s.rateLimited(s.handlePredict))
	return s.logged(mux)
}

// Start begins listening for HTTP requests.
// This method blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	defer s.limiter.Stop()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	s.log.WithField("port", s.port).Info("Server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// handleHealth returns overall status and per-variant model state.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	models := s.registry.States()
	status := HealthStatusOK
	for _, state := range models {
		if state == model.StateUnavailable.String() {
			status = HealthStatusDegraded
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: status, Version: s.version, Models: models})
}

// handleVariants lists the input schema of every variant.
// GET /variants
func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	states := s.registry.States()
	var out []VariantInfo
	for _, name := range soil.Names() {
		svc, err := s.registry.Service(name)
		if err != nil {
			continue
		}
		v := svc.Variant()
		out = append(out, VariantInfo{
			Name:          v.Name,
			Title:         v.Title,
			Layer:         v.Layer,
			Fields:        v.Fields,
			Columns:       v.Columns,
			ClassEncoding: v.Class.String(),
			ClassOptions:  v.ClassOptions,
			Gate:          string(v.Gate.Mode),
			ModelState:    states[v.Name],
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"variants": out})
}

// handlePredict runs one prediction.
// POST /predict/{variant}
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/predict/"), "/")
	svc, err := s.registry.Service(name)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	var in predict.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	snap, err := in.Snapshot(svc.Variant())
	if err != nil {
		resp := ErrorResponse{Error: err.Error()}
		if errors.Is(err, soil.ErrUnknownSoilClass) {
			resp.Hint = fmt.Sprintf("Supported classes: %v", svc.Variant().ClassOptions)
		}
		writeError(w, http.StatusBadRequest, resp)
		return
	}

	res, err := svc.Run(r.Context(), snap)
	if err != nil {
		status, resp := errorResponse(err)
		writeError(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		ID:         res.ID,
		Variant:    res.Variant,
		ModulusMPa: res.ModulusMPa,
		Display:    res.Display(),
		Demo:       res.Demo,
		Record:     res.Record.Map(),
	})
}

// errorResponse maps a pipeline error to a status code and body.
func errorResponse(err error) (int, ErrorResponse) {
	msg, hint := predict.Message(err)
	resp := ErrorResponse{Error: msg, Hint: hint}

	var notReady *predict.NotReadyError
	switch {
	case errors.As(err, &notReady):
		resp.Failed = notReady.Failed
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, model.ErrModelUnavailable):
		return http.StatusServiceUnavailable, resp
	case errors.Is(err, soil.ErrUnknownSoilClass):
		return http.StatusBadRequest, resp
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, resp
	}
	return http.StatusInternalServerError, resp
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit exceeded"})
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"remote":     clientIP(r),
			"elapsed":    time.Since(start),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("Request failed")
		} else {
			entry.Debug("Request served")
		}
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}
