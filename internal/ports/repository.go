package ports

import (
	"context"
	"time"

	"github.com/labtrack/labtrack/internal/domain"
)

// TxManager runs fn inside one transaction. Repositories called with the ctx
// handed to fn participate in it.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EquipmentRepository defines the interface for equipment persistence
type EquipmentRepository interface {
	// Create saves new equipment and sets its ID
	Create(ctx context.Context, equipment *domain.Equipment) error

	// FindByID retrieves equipment by its ID
	FindByID(ctx context.Context, id int64) (*domain.Equipment, error)

	// Update overwrites every editable field
	Update(ctx context.Context, equipment *domain.Equipment) error

	// SetLastMaintenance writes the derived last-maintenance date
	SetLastMaintenance(ctx context.Context, id int64, on time.Time) error

	// List retrieves equipment based on filter criteria, ordered by name
	List(ctx context.Context, filter domain.EquipmentFilter) ([]*domain.Equipment, error)

	// Delete removes equipment
	Delete(ctx context.Context, id int64) error

	// Locations returns the distinct non-empty locations
	Locations(ctx context.Context) ([]string, error)
}

// InventoryRepository defines the interface for inventory persistence
type InventoryRepository interface {
	Create(ctx context.Context, item *domain.InventoryItem) error
	FindByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	List(ctx context.Context, filter domain.InventoryFilter) ([]*domain.InventoryItem, error)
	Delete(ctx context.Context, id int64) error
	Locations(ctx context.Context) ([]string, error)
}

// ReportRepository defines the interface for incident report persistence
type ReportRepository interface {
	// Create saves a new report and sets its ID
	Create(ctx context.Context, report *domain.Report) error

	// FindByID retrieves a report by its ID
	FindByID(ctx context.Context, id int64) (*domain.Report, error)

	// Update writes status and resolution
	Update(ctx context.Context, report *domain.Report) error

	// List retrieves reports based on filter criteria, newest first
	List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error)

	// CountByEquipment returns the number of reports referencing the equipment
	CountByEquipment(ctx context.Context, equipmentID int64) (int, error)

	// DeleteByEquipment removes every report referencing the equipment
	DeleteByEquipment(ctx context.Context, equipmentID int64) (int64, error)
}

// ReservationRepository defines the interface for reservation persistence
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation) error
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)

	// ListConfirmedEndingAfter returns the confirmed reservations of the
	// equipment whose end is not before notBefore
	ListConfirmedEndingAfter(ctx context.Context, equipmentID int64, notBefore time.Time) ([]*domain.Reservation, error)

	CountByEquipment(ctx context.Context, equipmentID int64) (int, error)
	DeleteByEquipment(ctx context.Context, equipmentID int64) (int64, error)
}

// MaintenanceRepository defines the interface for maintenance persistence
type MaintenanceRepository interface {
	Create(ctx context.Context, record *domain.MaintenanceRecord) error
	FindByID(ctx context.Context, id int64) (*domain.MaintenanceRecord, error)
	Update(ctx context.Context, record *domain.MaintenanceRecord) error
	List(ctx context.Context, filter domain.MaintenanceFilter) ([]*domain.MaintenanceRecord, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// AccessLogRepository defines the interface for audit log persistence
type AccessLogRepository interface {
	// Append stores a new entry and sets its ID
	Append(ctx context.Context, entry *domain.AccessLogEntry) error

	// Recent returns the newest entries, joined with the user's name when the user still exists
	Recent(ctx context.Context, limit int) ([]*domain.AccessLogEntry, error)
}

// StatsRepository computes aggregate counts
type StatsRepository interface {
	Summary(ctx context.Context, topN int) (*domain.Stats, error)
}
