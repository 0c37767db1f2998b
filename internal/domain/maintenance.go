package domain

import (
	"time"
)

// MaintenanceCategory represents the kind of maintenance work
type MaintenanceCategory string

const (
	MaintenanceCategoryPreventive MaintenanceCategory = "PREVENTIVE"
	MaintenanceCategoryCorrective MaintenanceCategory = "CORRECTIVE"
	MaintenanceCategoryUpgrade    MaintenanceCategory = "UPGRADE"
	MaintenanceCategoryCleaning   MaintenanceCategory = "CLEANING"
)

// MaintenanceStatus represents the status of a maintenance record
type MaintenanceStatus string

const (
	MaintenanceStatusPending   MaintenanceStatus = "PENDING"
	MaintenanceStatusCompleted MaintenanceStatus = "COMPLETED"
	MaintenanceStatusCancelled MaintenanceStatus = "CANCELLED"
)

func (c MaintenanceCategory) Valid() bool {
	switch c {
	case MaintenanceCategoryPreventive, MaintenanceCategoryCorrective,
		MaintenanceCategoryUpgrade, MaintenanceCategoryCleaning:
		return true
	}
	return false
}

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceStatusPending, MaintenanceStatusCompleted, MaintenanceStatusCancelled:
		return true
	}
	return false
}

// MaintenanceRecord represents planned or performed work on equipment
type MaintenanceRecord struct {
	ID            int64               `json:"id"`
	EquipmentID   int64               `json:"equipment_id"`
	Category      MaintenanceCategory `json:"category"`
	ScheduledOn   time.Time           `json:"scheduled_on"`
	CompletedOn   *time.Time          `json:"completed_on,omitempty"`
	Description   string              `json:"description"`
	Technician    string              `json:"technician"`
	Status        MaintenanceStatus   `json:"status"`
	EstimatedCost float64             `json:"estimated_cost"`
	ActualCost    *float64            `json:"actual_cost,omitempty"`
	Notes         string              `json:"notes"`
}

// NewMaintenanceRecord creates a pending record
func NewMaintenanceRecord(equipmentID int64, category MaintenanceCategory, scheduledOn time.Time, description, technician string, estimatedCost float64) (*MaintenanceRecord, error) {
	if equipmentID <= 0 {
		return nil, NewValidationError("equipment_id", "is required")
	}
	if scheduledOn.IsZero() {
		return nil, NewValidationError("scheduled_on", "is required")
	}
	if !category.Valid() {
		return nil, NewValidationError("category", "unknown maintenance category")
	}
	if estimatedCost < 0 {
		return nil, NewValidationError("estimated_cost", "must not be negative")
	}
	return &MaintenanceRecord{
		EquipmentID:   equipmentID,
		Category:      category,
		ScheduledOn:   StartOfDay(scheduledOn),
		Description:   description,
		Technician:    technician,
		Status:        MaintenanceStatusPending,
		EstimatedCost: estimatedCost,
	}, nil
}

// Complete closes a pending record. The caller propagates CompletedOn to the
// equipment in the same transaction.
func (m *MaintenanceRecord) Complete(completedOn time.Time, actualCost *float64, notes string) error {
	if m.Status != MaintenanceStatusPending {
		return m.transitionError(MaintenanceStatusCompleted)
	}
	if completedOn.IsZero() {
		return NewValidationError("completed_on", "is required")
	}
	if actualCost != nil && *actualCost < 0 {
		return NewValidationError("actual_cost", "must not be negative")
	}
	d := StartOfDay(completedOn)
	m.CompletedOn = &d
	m.ActualCost = actualCost
	if notes != "" {
		m.Notes = notes
	}
	m.Status = MaintenanceStatusCompleted
	return nil
}

// Cancel abandons a pending record
func (m *MaintenanceRecord) Cancel() error {
	if m.Status != MaintenanceStatusPending {
		return m.transitionError(MaintenanceStatusCancelled)
	}
	m.Status = MaintenanceStatusCancelled
	return nil
}

// IsOverdue is evaluated at read time, never stored.
func (m *MaintenanceRecord) IsOverdue(today time.Time) bool {
	return m.Status == MaintenanceStatusPending && m.ScheduledOn.Before(StartOfDay(today))
}

func (m *MaintenanceRecord) transitionError(to MaintenanceStatus) error {
	return &InvalidTransitionError{Entity: "maintenance", From: string(m.Status), To: string(to)}
}

// MaintenanceFilter represents filters for listing maintenance records
type MaintenanceFilter struct {
	Category    *MaintenanceCategory `json:"category,omitempty"`
	Status      *MaintenanceStatus   `json:"status,omitempty"`
	EquipmentID *int64               `json:"equipment_id,omitempty"`
}
