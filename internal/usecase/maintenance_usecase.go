package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// ScheduleRequest represents the request to plan maintenance
type ScheduleRequest struct {
	EquipmentID   int64                      `json:"equipment_id" validate:"required,gt=0"`
	Category      domain.MaintenanceCategory `json:"category" validate:"required"`
	ScheduledOn   time.Time                  `json:"scheduled_on" validate:"required"`
	Description   string                     `json:"description" validate:"max=2000"`
	Technician    string                     `json:"technician" validate:"max=200"`
	EstimatedCost float64                    `json:"estimated_cost" validate:"gte=0"`
}

// CompleteMaintenanceRequest represents the request to close maintenance
type CompleteMaintenanceRequest struct {
	CompletedOn time.Time `json:"completed_on" validate:"required"`
	ActualCost  *float64  `json:"actual_cost,omitempty" validate:"omitempty,gte=0"`
	Notes       string    `json:"notes"`
}

// MaintenanceView is a record as listed, with the overdue flag evaluated at
// read time
type MaintenanceView struct {
	*domain.MaintenanceRecord
	Overdue bool `json:"overdue"`
}

// MaintenanceUseCase handles planning and completion of maintenance
type MaintenanceUseCase struct {
	maintenance ports.MaintenanceRepository
	equipment   ports.EquipmentRepository
	tx          ports.TxManager
	audit       ports.AuditRecorder
	clock       ports.Clock
	log         logger.Logger
}

// NewMaintenanceUseCase creates a new maintenance use case
func NewMaintenanceUseCase(
	maintenance ports.MaintenanceRepository,
	equipment ports.EquipmentRepository,
	tx ports.TxManager,
	audit ports.AuditRecorder,
	clock ports.Clock,
	log logger.Logger,
) *MaintenanceUseCase {
	return &MaintenanceUseCase{
		maintenance: maintenance,
		equipment:   equipment,
		tx:          tx,
		audit:       audit,
		clock:       orSystemClock(clock),
		log:         orNopLogger(log),
	}
}

// Schedule plans a PENDING maintenance record
func (uc *MaintenanceUseCase) Schedule(ctx context.Context, actorID int64, req ScheduleRequest) (record *domain.MaintenanceRecord, err error) {
	defer observe("maintenance.schedule", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	record, err = domain.NewMaintenanceRecord(req.EquipmentID, req.Category, req.ScheduledOn, req.Description, req.Technician, req.EstimatedCost)
	if err != nil {
		return nil, err
	}

	if _, err := uc.equipment.FindByID(ctx, req.EquipmentID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError("equipment_id", "unknown equipment")
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	if err := uc.maintenance.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionMaintenanceScheduled, fmt.Sprintf(
		"maintenance %d of equipment %d scheduled for %s", record.ID, record.EquipmentID, domain.FormatDate(record.ScheduledOn),
	))
	return record, nil
}

// Complete closes a PENDING record and sets the equipment's last maintenance
// date in the same transaction.
func (uc *MaintenanceUseCase) Complete(ctx context.Context, actorID, id int64, req CompleteMaintenanceRequest) (record *domain.MaintenanceRecord, err error) {
	defer observe("maintenance.complete", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := uc.maintenance.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get maintenance: %w", err)
		}
		if err := r.Complete(req.CompletedOn, req.ActualCost, req.Notes); err != nil {
			return err
		}

		if err := uc.equipment.SetLastMaintenance(ctx, r.EquipmentID, *r.CompletedOn); err != nil {
			if !domain.IsNotFound(err) {
				return fmt.Errorf("failed to update equipment maintenance date: %w", err)
			}
			// equipment deletion does not cascade to maintenance
			uc.log.Warn(ctx, "completed maintenance of missing equipment", map[string]interface{}{
				"maintenance_id": r.ID,
				"equipment_id":   r.EquipmentID,
			})
		}

		if err := uc.maintenance.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update maintenance: %w", err)
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "maintenance completed", map[string]interface{}{
		"maintenance_id": record.ID,
		"equipment_id":   record.EquipmentID,
		"completed_on":   domain.FormatDate(*record.CompletedOn),
	})
	uc.audit.Record(ctx, actorID, domain.ActionMaintenanceCompleted, fmt.Sprintf(
		"maintenance %d of equipment %d completed on %s", record.ID, record.EquipmentID, domain.FormatDate(*record.CompletedOn),
	))
	return record, nil
}

// Cancel abandons a PENDING record
func (uc *MaintenanceUseCase) Cancel(ctx context.Context, actorID, id int64) (record *domain.MaintenanceRecord, err error) {
	defer observe("maintenance.cancel", time.Now(), &err)

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := uc.maintenance.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get maintenance: %w", err)
		}
		if err := r.Cancel(); err != nil {
			return err
		}
		if err := uc.maintenance.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update maintenance: %w", err)
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actorID, domain.ActionMaintenanceCancelled, fmt.Sprintf("maintenance %d cancelled", record.ID))
	return record, nil
}

// Get retrieves a record by ID
func (uc *MaintenanceUseCase) Get(ctx context.Context, id int64) (MaintenanceView, error) {
	record, err := uc.maintenance.FindByID(ctx, id)
	if err != nil {
		return MaintenanceView{}, fmt.Errorf("failed to get maintenance: %w", err)
	}
	return MaintenanceView{MaintenanceRecord: record, Overdue: record.IsOverdue(uc.clock())}, nil
}

// List retrieves records ordered by scheduled date
func (uc *MaintenanceUseCase) List(ctx context.Context, filter domain.MaintenanceFilter) ([]MaintenanceView, error) {
	records, err := uc.maintenance.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance: %w", err)
	}

	today := uc.clock()
	views := make([]MaintenanceView, 0, len(records))
	for _, r := range records {
		views = append(views, MaintenanceView{MaintenanceRecord: r, Overdue: r.IsOverdue(today)})
	}
	return views, nil
}
