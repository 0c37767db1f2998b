package domain

import (
	"strings"
	"time"
)

// ReportStatus represents the status of an incident report
type ReportStatus string

const (
	ReportStatusOpen       ReportStatus = "OPEN"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusResolved   ReportStatus = "RESOLVED"
)

// ReportCategory represents the category of an incident report
type ReportCategory string

const (
	ReportCategoryHardware ReportCategory = "HARDWARE"
	ReportCategorySoftware ReportCategory = "SOFTWARE"
	ReportCategoryNetwork  ReportCategory = "NETWORK"
	ReportCategoryOther    ReportCategory = "OTHER"
)

// Priority represents the urgency of an incident report
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (c ReportCategory) Valid() bool {
	switch c {
	case ReportCategoryHardware, ReportCategorySoftware, ReportCategoryNetwork, ReportCategoryOther:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusOpen, ReportStatusInProgress, ReportStatusResolved:
		return true
	}
	return false
}

// Report represents an incident filed against equipment (or the lab in general)
type Report struct {
	ID          int64          `json:"id"`
	EquipmentID *int64         `json:"equipment_id,omitempty"`
	Category    ReportCategory `json:"category"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	Status      ReportStatus   `json:"status"`
	Resolution  *string        `json:"resolution,omitempty"`
	ReportedBy  int64          `json:"reported_by"`
	Priority    Priority       `json:"priority"`
}

// NewReport creates a new report in the OPEN state
func NewReport(equipmentID *int64, category ReportCategory, description string, priority Priority, reportedBy int64, now time.Time) (*Report, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, NewValidationError("description", "is required")
	}
	if !category.Valid() {
		return nil, NewValidationError("category", "unknown report category")
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, NewValidationError("priority", "unknown priority")
	}
	return &Report{
		EquipmentID: equipmentID,
		Category:    category,
		Description: description,
		CreatedAt:   now,
		Status:      ReportStatusOpen,
		ReportedBy:  reportedBy,
		Priority:    priority,
	}, nil
}

// MarkInProgress moves an open report into work
func (r *Report) MarkInProgress() error {
	if r.Status != ReportStatusOpen {
		return r.transitionError(ReportStatusInProgress)
	}
	r.Status = ReportStatusInProgress
	return nil
}

// Resolve closes the report with a resolution text
func (r *Report) Resolve(resolution string) error {
	if r.Status == ReportStatusResolved {
		return r.transitionError(ReportStatusResolved)
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return NewValidationError("resolution", "is required")
	}
	r.Status = ReportStatusResolved
	r.Resolution = &resolution
	return nil
}

func (r *Report) transitionError(to ReportStatus) error {
	return &InvalidTransitionError{Entity: "report", From: string(r.Status), To: string(to)}
}

// ReportFilter represents filters for listing reports. From and To are
// inclusive calendar dates.
type ReportFilter struct {
	Category *ReportCategory `json:"category,omitempty"`
	Status   *ReportStatus   `json:"status,omitempty"`
	Priority *Priority       `json:"priority,omitempty"`
	From     *time.Time      `json:"from,omitempty"`
	To       *time.Time      `json:"to,omitempty"`
}
