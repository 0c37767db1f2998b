package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// EquipmentRequest carries the editable fields of a piece of equipment.
// LastMaintenance is derived from completed maintenance and never set here.
type EquipmentRequest struct {
	Name       string                   `json:"name" validate:"notblank,max=200"`
	Category   domain.EquipmentCategory `json:"category" validate:"required"`
	Model      string                   `json:"model" validate:"max=200"`
	Serial     *string                  `json:"serial,omitempty" validate:"omitempty,max=100"`
	Status     domain.EquipmentStatus   `json:"status"`
	Location   string                   `json:"location" validate:"max=200"`
	AcquiredOn *time.Time               `json:"acquired_on,omitempty"`
	Notes      string                   `json:"notes"`
}

func (r EquipmentRequest) apply(e *domain.Equipment) {
	e.Name = r.Name
	e.Category = r.Category
	e.Model = r.Model
	e.Serial = r.Serial
	e.Status = r.Status
	e.Location = r.Location
	e.Notes = r.Notes
	e.AcquiredOn = nil
	if r.AcquiredOn != nil {
		d := domain.StartOfDay(*r.AcquiredOn)
		e.AcquiredOn = &d
	}
}

// EquipmentUseCase handles the equipment registry
type EquipmentUseCase struct {
	equipment ports.EquipmentRepository
	audit     ports.AuditRecorder
	log       logger.Logger
}

// NewEquipmentUseCase creates a new equipment use case
func NewEquipmentUseCase(equipment ports.EquipmentRepository, audit ports.AuditRecorder, log logger.Logger) *EquipmentUseCase {
	return &EquipmentUseCase{equipment: equipment, audit: audit, log: orNopLogger(log)}
}

// Create registers new equipment
func (uc *EquipmentUseCase) Create(ctx context.Context, actorID int64, req EquipmentRequest) (equipment *domain.Equipment, err error) {
	defer observe("equipment.create", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	equipment = &domain.Equipment{}
	req.apply(equipment)
	equipment.Normalize()
	if err := equipment.Validate(); err != nil {
		return nil, err
	}

	if err := uc.equipment.Create(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionEquipmentCreated, fmt.Sprintf("equipment %d %q created", equipment.ID, equipment.Name))
	return equipment, nil
}

// Update overwrites the editable fields of existing equipment
func (uc *EquipmentUseCase) Update(ctx context.Context, actorID, id int64, req EquipmentRequest) (equipment *domain.Equipment, err error) {
	defer observe("equipment.update", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	equipment, err = uc.equipment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	req.apply(equipment)
	equipment.Normalize()
	if err := equipment.Validate(); err != nil {
		return nil, err
	}

	if err := uc.equipment.Update(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionEquipmentUpdated, fmt.Sprintf("equipment %d %q updated", equipment.ID, equipment.Name))
	return equipment, nil
}

// Get retrieves equipment by ID
func (uc *EquipmentUseCase) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	equipment, err := uc.equipment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return equipment, nil
}

// List retrieves equipment ordered by name
func (uc *EquipmentUseCase) List(ctx context.Context, filter domain.EquipmentFilter) ([]*domain.Equipment, error) {
	items, err := uc.equipment.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}

// Locations lists the distinct equipment locations for filters
func (uc *EquipmentUseCase) Locations(ctx context.Context) ([]string, error) {
	locations, err := uc.equipment.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment locations: %w", err)
	}
	return locations, nil
}
