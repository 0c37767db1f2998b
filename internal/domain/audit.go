package domain

import "time"

// AccessLogEntry represents one append-only audit record
type AccessLogEntry struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	UserName string    `json:"user_name,omitempty"`
	At       time.Time `json:"at"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail"`
}

// Audit actions recorded by the use cases.
const (
	ActionEquipmentCreated     = "EQUIPMENT_CREATED"
	ActionEquipmentUpdated     = "EQUIPMENT_UPDATED"
	ActionEquipmentDeleted     = "EQUIPMENT_DELETED"
	ActionInventoryCreated     = "INVENTORY_CREATED"
	ActionInventoryUpdated     = "INVENTORY_UPDATED"
	ActionInventoryDeleted     = "INVENTORY_DELETED"
	ActionReportCreated        = "REPORT_CREATED"
	ActionReportInProgress     = "REPORT_IN_PROGRESS"
	ActionReportResolved       = "REPORT_RESOLVED"
	ActionReservationBooked    = "RESERVATION_BOOKED"
	ActionReservationCancelled = "RESERVATION_CANCELLED"
	ActionReservationCompleted = "RESERVATION_COMPLETED"
	ActionMaintenanceScheduled = "MAINTENANCE_SCHEDULED"
	ActionMaintenanceCompleted = "MAINTENANCE_COMPLETED"
	ActionMaintenanceCancelled = "MAINTENANCE_CANCELLED"
	ActionUserCreated          = "USER_CREATED"
	ActionUserUpdated          = "USER_UPDATED"
	ActionUserDeleted          = "USER_DELETED"
	ActionUserLogin            = "USER_LOGIN"
	ActionDatabaseBackup       = "DATABASE_BACKUP"
	ActionDatabaseRestore      = "DATABASE_RESTORE"
)
