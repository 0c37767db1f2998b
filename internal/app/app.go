// Package app wires configuration, storage and use cases together for the
// server and the operational CLI.
package app

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/labtrack/labtrack/infrastructure/http/sse"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/infrastructure/service/password"
	httpadapter "github.com/labtrack/labtrack/internal/adapter/http"
	"github.com/labtrack/labtrack/internal/adapter/lock"
	"github.com/labtrack/labtrack/internal/adapter/persistence"
	"github.com/labtrack/labtrack/internal/config"
	"github.com/labtrack/labtrack/internal/ports"
	"github.com/labtrack/labtrack/internal/usecase"
)

// Repositories holds all repository implementations
type Repositories struct {
	Equipment    *persistence.EquipmentRepository
	Inventory    *persistence.InventoryRepository
	Reports      *persistence.ReportRepository
	Reservations *persistence.ReservationRepository
	Maintenance  *persistence.MaintenanceRepository
	Users        *persistence.UserRepository
	AccessLog    *persistence.AccessLogRepository
	Stats        *persistence.StatsRepository
}

// UseCases holds all use case implementations
type UseCases struct {
	Audit        *usecase.AuditLog
	Equipment    *usecase.EquipmentUseCase
	Inventory    *usecase.InventoryUseCase
	Reports      *usecase.ReportUseCase
	Reservations *usecase.ReservationUseCase
	Maintenance  *usecase.MaintenanceUseCase
	Users        *usecase.UserUseCase
	Integrity    *usecase.IntegrityUseCase
	Stats        *usecase.StatsUseCase
}

// App is a fully wired instance backed by one gateway
type App struct {
	Config   *config.Config
	Log      logger.Logger
	Gateway  *persistence.Gateway
	Locker   ports.EquipmentLocker
	Streamer *sse.Streamer // nil when SSE is disabled
	Repos    Repositories
	UseCases UseCases

	closers    []func() error
	stopStream context.CancelFunc
}

// NewLogger builds the structured logger from configuration
func NewLogger(cfg *config.Config, service string) logger.Logger {
	return logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: service,
	})
}

// Open connects to the database, applies pending migrations and wires every
// use case.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	gateway, err := persistence.Open(ctx, persistence.Options{
		Dialect:      persistence.Dialect(cfg.Database.Driver),
		Path:         cfg.Database.Path,
		DSN:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxConnections,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, Gateway: gateway, closers: []func() error{gateway.Close}}

	if err := gateway.CreateSchemaIfAbsent(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Info(ctx, "Database ready", map[string]interface{}{
		"driver": cfg.Database.Driver,
	})

	locker, err := newLocker(cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Locker = locker
	if c, ok := locker.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.Repos = initRepositories(gateway)
	a.UseCases = initUseCases(a.Repos, gateway, locker, cfg, log)

	if cfg.SSE.Enabled {
		streamCtx, stop := context.WithCancel(context.Background())
		a.Streamer = sse.NewStreamer(sse.Config{
			HeartbeatInterval: cfg.SSE.HeartbeatInterval,
			ClientBufferSize:  cfg.SSE.ClientBufferSize,
		}, log)
		a.Streamer.Start(streamCtx)
		a.UseCases.Audit.PublishTo(a.Streamer)
		a.stopStream = stop
		a.closers = append(a.closers, func() error { stop(); return nil })
	}
	return a, nil
}

func newLocker(cfg *config.Config, log logger.Logger) (ports.EquipmentLocker, error) {
	if cfg.Lock.Backend != "redis" {
		return lock.NewLocal(), nil
	}
	locker, err := lock.NewRedis(lock.RedisConfig{
		URL:     cfg.Lock.RedisURL,
		TTL:     cfg.Lock.TTL,
		MaxWait: cfg.Lock.MaxWait,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis lock: %w", err)
	}
	log.Info(context.Background(), "Redis booking lock initialized", nil)
	return locker, nil
}

func initRepositories(g *persistence.Gateway) Repositories {
	return Repositories{
		Equipment:    persistence.NewEquipmentRepository(g),
		Inventory:    persistence.NewInventoryRepository(g),
		Reports:      persistence.NewReportRepository(g),
		Reservations: persistence.NewReservationRepository(g),
		Maintenance:  persistence.NewMaintenanceRepository(g),
		Users:        persistence.NewUserRepository(g),
		AccessLog:    persistence.NewAccessLogRepository(g),
		Stats:        persistence.NewStatsRepository(g),
	}
}

func initUseCases(repos Repositories, g *persistence.Gateway, locker ports.EquipmentLocker, cfg *config.Config, log logger.Logger) UseCases {
	var clock ports.Clock // system clock

	audit := usecase.NewAuditLog(repos.AccessLog, clock, log)
	return UseCases{
		Audit:        audit,
		Equipment:    usecase.NewEquipmentUseCase(repos.Equipment, audit, log),
		Inventory:    usecase.NewInventoryUseCase(repos.Inventory, audit, clock, log),
		Reports:      usecase.NewReportUseCase(repos.Reports, repos.Equipment, g, audit, clock, log),
		Reservations: usecase.NewReservationUseCase(repos.Reservations, repos.Equipment, repos.Users, g, locker, audit, clock, log, cfg.Booking.MaxRetries),
		Maintenance:  usecase.NewMaintenanceUseCase(repos.Maintenance, repos.Equipment, g, audit, clock, log),
		Users:        usecase.NewUserUseCase(repos.Users, password.NewBcryptHasher(bcrypt.DefaultCost), audit, clock, log),
		Integrity:    usecase.NewIntegrityUseCase(repos.Equipment, repos.Reports, repos.Reservations, repos.Users, g, audit, log),
		Stats:        usecase.NewStatsUseCase(repos.Stats),
	}
}

// Services exposes the use cases to the HTTP adapter
func (a *App) Services() httpadapter.Services {
	uc := a.UseCases
	services := httpadapter.Services{
		Equipment:    uc.Equipment,
		Inventory:    uc.Inventory,
		Reports:      uc.Reports,
		Reservations: uc.Reservations,
		Maintenance:  uc.Maintenance,
		Users:        uc.Users,
		Integrity:    uc.Integrity,
		History:      uc.Audit,
		Stats:        uc.Stats,
	}
	if a.Streamer != nil {
		services.AuditStream = a.Streamer
	}
	return services
}

// StopStreams disconnects every live history subscriber. Open connections
// would otherwise hold up a graceful HTTP shutdown.
func (a *App) StopStreams() {
	if a.stopStream != nil {
		a.stopStream()
	}
}

// Close releases the lock backend and the database handle
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
