package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labtrack/labtrack/infrastructure/http/middleware"
	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	log    logger.Logger
	router http.Handler
	server *http.Server
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	CORSOrigins    []string
	DefaultActor   int64
	MetricsEnabled bool
}

// Services bundles what the handlers delegate to
type Services struct {
	Equipment    EquipmentService
	Inventory    InventoryService
	Reports      ReportService
	Reservations ReservationService
	Maintenance  MaintenanceService
	Users        UserService
	Integrity    IntegrityService
	History      HistoryService
	Stats        StatsService
	AuditStream  http.Handler
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, services Services, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	router := NewRouter(config, services, log)
	addr := net.JoinHostPort(config.Host, config.Port)

	return &Server{
		addr:   addr,
		log:    log,
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// NewRouter registers every handler and the middleware chain
func NewRouter(config ServerConfig, services Services, log logger.Logger) http.Handler {
	router := mux.NewRouter()

	NewEquipmentHandler(services.Equipment, services.Integrity, services.Reservations, log).RegisterRoutes(router)
	NewInventoryHandler(services.Inventory, log).RegisterRoutes(router)
	NewReportHandler(services.Reports, log).RegisterRoutes(router)
	NewReservationHandler(services.Reservations, log).RegisterRoutes(router)
	NewMaintenanceHandler(services.Maintenance, log).RegisterRoutes(router)
	NewUserHandler(services.Users, services.Integrity, log).RegisterRoutes(router)
	NewAdminHandler(services.History, services.Stats, services.AuditStream, log).RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	}).Methods("GET")
	if config.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	router.Use(middleware.CorrelationIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ActorMiddleware(config.DefaultActor))

	// mux skips middleware for unmatched routes, so preflights are answered in front of it
	return middleware.CORSMiddleware(config.CORSOrigins)(router)
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"addr": s.addr,
	})
	return s.server.ListenAndServe()
}

// RegisterOnShutdown calls f when Shutdown begins
func (s *Server) RegisterOnShutdown(f func()) {
	s.server.RegisterOnShutdown(f)
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
