package domain

import (
	"errors"
	"testing"
	"time"
)

func TestMaintenanceRecord_Complete(t *testing.T) {
	scheduled := time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)
	m, err := NewMaintenanceRecord(4, MaintenanceCategoryPreventive, scheduled, "fan cleaning", "Ana", 20)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Status != MaintenanceStatusPending {
		t.Errorf("Expected status %s, got %s", MaintenanceStatusPending, m.Status)
	}

	cost := 25.5
	done := time.Date(2024, 4, 3, 16, 45, 0, 0, time.Local)
	if err := m.Complete(done, &cost, "replaced fan"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Status != MaintenanceStatusCompleted {
		t.Errorf("Expected status %s, got %s", MaintenanceStatusCompleted, m.Status)
	}
	if m.CompletedOn == nil || FormatDate(*m.CompletedOn) != "2024-04-03" {
		t.Errorf("Expected completion date 2024-04-03, got %v", m.CompletedOn)
	}
	if m.ActualCost == nil || *m.ActualCost != cost {
		t.Errorf("Expected actual cost %v, got %v", cost, m.ActualCost)
	}

	var ite *InvalidTransitionError
	if err := m.Complete(done, nil, ""); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError completing twice, got %v", err)
	}
	if err := m.Cancel(); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError cancelling a completed record, got %v", err)
	}
}

func TestNewMaintenanceRecord_Validation(t *testing.T) {
	day := time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		equipment int64
		category  MaintenanceCategory
		on        time.Time
		field     string
	}{
		{"missing equipment", 0, MaintenanceCategoryCleaning, day, "equipment_id"},
		{"missing date", 1, MaintenanceCategoryCleaning, time.Time{}, "scheduled_on"},
		{"unknown category", 1, MaintenanceCategory("PAINTING"), day, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMaintenanceRecord(tt.equipment, tt.category, tt.on, "", "", 0)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestMaintenanceRecord_IsOverdue(t *testing.T) {
	m, _ := NewMaintenanceRecord(1, MaintenanceCategoryUpgrade, time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local), "", "", 0)

	if m.IsOverdue(time.Date(2024, 4, 1, 18, 0, 0, 0, time.Local)) {
		t.Error("Expected record scheduled today not to be overdue")
	}
	if !m.IsOverdue(time.Date(2024, 4, 2, 8, 0, 0, 0, time.Local)) {
		t.Error("Expected record scheduled yesterday to be overdue")
	}

	_ = m.Cancel()
	if m.IsOverdue(time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)) {
		t.Error("Expected cancelled record never to be overdue")
	}
}
