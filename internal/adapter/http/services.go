package http

import (
	"context"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// The handlers depend on these narrow views of the use cases.

type EquipmentService interface {
	Create(ctx context.Context, actorID int64, req usecase.EquipmentRequest) (*domain.Equipment, error)
	Update(ctx context.Context, actorID, id int64, req usecase.EquipmentRequest) (*domain.Equipment, error)
	Get(ctx context.Context, id int64) (*domain.Equipment, error)
	List(ctx context.Context, filter domain.EquipmentFilter) ([]*domain.Equipment, error)
	Locations(ctx context.Context) ([]string, error)
}

type InventoryService interface {
	Create(ctx context.Context, actorID int64, req usecase.InventoryRequest) (usecase.InventoryView, error)
	Update(ctx context.Context, actorID, id int64, req usecase.InventoryRequest) (usecase.InventoryView, error)
	Get(ctx context.Context, id int64) (usecase.InventoryView, error)
	List(ctx context.Context, filter domain.InventoryFilter) ([]usecase.InventoryView, error)
	Delete(ctx context.Context, actorID, id int64) error
	Locations(ctx context.Context) ([]string, error)
}

type ReportService interface {
	Create(ctx context.Context, actorID int64, req usecase.CreateReportRequest) (*domain.Report, error)
	MarkInProgress(ctx context.Context, actorID, reportID int64) (*domain.Report, error)
	Resolve(ctx context.Context, actorID, reportID int64, resolution string) (*domain.Report, error)
	Get(ctx context.Context, id int64) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)
}

type ReservationService interface {
	Book(ctx context.Context, actorID int64, req usecase.BookRequest) (*domain.Reservation, error)
	Cancel(ctx context.Context, actorID, reservationID int64) (*domain.Reservation, error)
	Complete(ctx context.Context, actorID, reservationID int64) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (usecase.ReservationView, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]usecase.ReservationView, error)
	AvailableEquipment(ctx context.Context) ([]*domain.Equipment, error)
}

type MaintenanceService interface {
	Schedule(ctx context.Context, actorID int64, req usecase.ScheduleRequest) (*domain.MaintenanceRecord, error)
	Complete(ctx context.Context, actorID, id int64, req usecase.CompleteMaintenanceRequest) (*domain.MaintenanceRecord, error)
	Cancel(ctx context.Context, actorID, id int64) (*domain.MaintenanceRecord, error)
	Get(ctx context.Context, id int64) (usecase.MaintenanceView, error)
	List(ctx context.Context, filter domain.MaintenanceFilter) ([]usecase.MaintenanceView, error)
}

type UserService interface {
	Create(ctx context.Context, actorID int64, req usecase.UserRequest) (*domain.User, error)
	Update(ctx context.Context, actorID, id int64, req usecase.UserRequest) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
	VerifyCredentials(ctx context.Context, login, password string) (*domain.User, error)
}

type IntegrityService interface {
	EquipmentDependents(ctx context.Context, equipmentID int64) (domain.Dependents, error)
	DeleteEquipment(ctx context.Context, actorID, equipmentID int64, confirmed bool) (domain.Dependents, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
}

type HistoryService interface {
	Recent(ctx context.Context, limit int) ([]*domain.AccessLogEntry, error)
}

type StatsService interface {
	Summary(ctx context.Context) (*domain.Stats, error)
}

var (
	_ EquipmentService   = (*usecase.EquipmentUseCase)(nil)
	_ InventoryService   = (*usecase.InventoryUseCase)(nil)
	_ ReportService      = (*usecase.ReportUseCase)(nil)
	_ ReservationService = (*usecase.ReservationUseCase)(nil)
	_ MaintenanceService = (*usecase.MaintenanceUseCase)(nil)
	_ UserService        = (*usecase.UserUseCase)(nil)
	_ IntegrityService   = (*usecase.IntegrityUseCase)(nil)
	_ HistoryService     = (*usecase.AuditLog)(nil)
	_ StatsService       = (*usecase.StatsUseCase)(nil)
)
