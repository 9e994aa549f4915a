// Package server provides HTTP server management and lifecycle handling for the drug cost API.
// It includes server setup, middleware configuration, route management, and graceful shutdown
// capabilities with proper error handling and logging.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof handlers for the dev profiling listener
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmalytics/drugcost-api/config"
	"github.com/pharmalytics/drugcost-api/data"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
	"github.com/pharmalytics/drugcost-api/metrics"
	"github.com/pharmalytics/drugcost-api/scheduler"
)

// Global server start time
var serverStartTime = time.Now()

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        chi.Router
	dataContainer *data.DataContainer
	handler       interfaces.HTTPHandler
	config        *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, dataContainer *data.DataContainer, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:        router,
		dataContainer: dataContainer,
		handler:       handler,
		config:        cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware) // Put BEFORE RealIPMiddleware to see original RemoteAddr
	s.router.Use(RealIPMiddleware)

	logger := slog.Default()
	if logging.DefaultLoggingService != nil && logging.DefaultLoggingService.Logger != nil {
		logger = logging.DefaultLoggingService.Logger
	}
	s.router.Use(logging.LoggingMiddleware(logger))

	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json"))
	s.router.Use(RequestSizeMiddleware(s.config))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/drugs", s.handler.ServeDrugs)
		r.Get("/drug-stats", s.handler.ServeDrugStats)
		r.Post("/recommend", s.handler.RecommendDrugs)
		r.Post("/add-drug", s.handler.AddDrug)
		r.Get("/cost-analysis", s.handler.ServeCostAnalysis)
		r.Get("/formulary", s.handler.ServeFormulary)
		r.Get("/stats", s.handler.ServeFormularyStats)
		r.Post("/forecast", s.handler.ForecastDrug)
		r.Get("/forecast/drugs", s.handler.ServeForecastableDrugs)
		r.Route("/cia", func(r chi.Router) {
			r.Post("/add", s.handler.AddCostImpact)
			r.Get("/summary", s.handler.ServeCostImpactSummary)
			r.Get("/records", s.handler.ServeCostImpactRecords)
			r.Delete("/clear", s.handler.ClearCostImpact)
		})
		r.Get("/health", s.handler.HealthCheck)
	})

	// Probe alias outside the /api prefix
	s.router.Get("/health", s.handler.HealthCheck)

	// Prometheus scrape endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Documentation routes
	s.setupDocumentationRoutes()
}

// setupDocumentationRoutes configures documentation and static file routes
func (s *Server) setupDocumentationRoutes() {
	// Serve documentation with caching
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600") // 1 hour
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, "html/index.html")
	})
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	// Wait a bit for any ongoing requests to complete
	logging.Info("Waiting for ongoing requests to complete...")
	time.Sleep(2 * time.Second)

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}

// HealthData represents health check response data
type HealthData struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	MemoryUsage     int    `json:"memory_usage_mb"`
	LastUpdate      string `json:"last_update"`
	NextUpdate      string `json:"next_update"`
	IsUpdating      bool   `json:"is_updating"`
	DrugRecordCount int    `json:"drug_record_count"`
	FormularyCount  int    `json:"formulary_count"`
}

// GetHealthData returns current health statistics
func (s *Server) GetHealthData() HealthData {
	// Get memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryUsageMB := int(m.Alloc / 1024 / 1024)

	// Calculate uptime
	uptime := time.Since(serverStartTime)

	// Get data statistics
	records := s.dataContainer.GetRecords()
	formulary := s.dataContainer.GetFormulary()
	lastUpdate := s.dataContainer.GetLastUpdated()
	isUpdating := s.dataContainer.IsUpdating()

	return HealthData{
		Status:          "healthy",
		Uptime:          formatUptimeHuman(uptime),
		MemoryUsage:     memoryUsageMB,
		LastUpdate:      lastUpdate.Format(time.RFC3339),
		NextUpdate:      scheduler.CalculateNextUpdate().Format(time.RFC3339),
		IsUpdating:      isUpdating,
		DrugRecordCount: len(records),
		FormularyCount:  len(formulary),
	}
}
