package domain

import (
	"strings"
	"time"
)

// EquipmentCategory represents the kind of a piece of equipment
type EquipmentCategory string

const (
	EquipmentCategoryComputer EquipmentCategory = "COMPUTER"
	EquipmentCategoryServer   EquipmentCategory = "SERVER"
	EquipmentCategorySwitch   EquipmentCategory = "SWITCH"
	EquipmentCategoryRouter   EquipmentCategory = "ROUTER"
	EquipmentCategoryPrinter  EquipmentCategory = "PRINTER"
	EquipmentCategoryOther    EquipmentCategory = "OTHER"
)

// EquipmentStatus represents the operational state of equipment
type EquipmentStatus string

const (
	EquipmentStatusOperational EquipmentStatus = "OPERATIONAL"
	EquipmentStatusMaintenance EquipmentStatus = "MAINTENANCE"
	EquipmentStatusDamaged     EquipmentStatus = "DAMAGED"
	EquipmentStatusRetired     EquipmentStatus = "RETIRED"
)

// Equipment represents a tracked physical device
type Equipment struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Category        EquipmentCategory `json:"category"`
	Model           string            `json:"model"`
	Serial          *string           `json:"serial,omitempty"`
	Status          EquipmentStatus   `json:"status"`
	Location        string            `json:"location"`
	AcquiredOn      *time.Time        `json:"acquired_on,omitempty"`
	LastMaintenance *time.Time        `json:"last_maintenance,omitempty"`
	Notes           string            `json:"notes"`
}

// Normalize trims text fields and turns a blank serial into no serial, so
// several rows may carry "no serial" without tripping the unique index.
func (e *Equipment) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Model = strings.TrimSpace(e.Model)
	e.Location = strings.TrimSpace(e.Location)
	if e.Serial != nil {
		s := strings.TrimSpace(*e.Serial)
		if s == "" {
			e.Serial = nil
		} else {
			e.Serial = &s
		}
	}
	if e.Status == "" {
		e.Status = EquipmentStatusOperational
	}
}

// Validate checks the fields required on every write.
func (e *Equipment) Validate() error {
	if e.Name == "" {
		return NewValidationError("name", "is required")
	}
	if !e.Category.Valid() {
		return NewValidationError("category", "unknown equipment category")
	}
	if !e.Status.Valid() {
		return NewValidationError("status", "unknown equipment status")
	}
	return nil
}

// RecordMaintenance sets the derived last-maintenance date.
func (e *Equipment) RecordMaintenance(on time.Time) {
	d := StartOfDay(on)
	e.LastMaintenance = &d
}

func (c EquipmentCategory) Valid() bool {
	switch c {
	case EquipmentCategoryComputer, EquipmentCategoryServer, EquipmentCategorySwitch,
		EquipmentCategoryRouter, EquipmentCategoryPrinter, EquipmentCategoryOther:
		return true
	}
	return false
}

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentStatusOperational, EquipmentStatusMaintenance, EquipmentStatusDamaged, EquipmentStatusRetired:
		return true
	}
	return false
}

// EquipmentFilter represents filters for listing equipment
type EquipmentFilter struct {
	Category *EquipmentCategory `json:"category,omitempty"`
	Status   *EquipmentStatus   `json:"status,omitempty"`
	Location *string            `json:"location,omitempty"`
}

// Dependents counts the rows that reference a piece of equipment and are
// removed with it.
type Dependents struct {
	Reports      int `json:"reports"`
	Reservations int `json:"reservations"`
}

// Any reports whether at least one dependent exists.
func (d Dependents) Any() bool {
	return d.Reports > 0 || d.Reservations > 0
}
