package domain

import (
	"errors"
	"testing"
	"time"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2024, 5, 20, hour, min, sec, 0, time.Local)
}

func TestReservation_Overlaps(t *testing.T) {
	existing := &Reservation{Start: at(10, 0, 0), End: at(12, 0, 0), Status: ReservationStatusConfirmed}

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected bool
	}{
		{"shared end boundary", at(12, 0, 0), at(13, 0, 0), true},
		{"shared start boundary", at(9, 0, 0), at(10, 0, 0), true},
		{"one second after", at(12, 0, 1), at(13, 0, 0), false},
		{"ends one second before", at(8, 0, 0), at(9, 59, 59), false},
		{"contained", at(10, 30, 0), at(11, 0, 0), true},
		{"containing", at(9, 0, 0), at(13, 0, 0), true},
		{"partial start", at(11, 0, 0), at(14, 0, 0), true},
		{"identical", at(10, 0, 0), at(12, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.start, tt.end); got != tt.expected {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestNewReservation_Validation(t *testing.T) {
	tests := []struct {
		name      string
		equipment int64
		user      int64
		start     time.Time
		end       time.Time
		field     string
	}{
		{"missing equipment", 0, 1, at(10, 0, 0), at(11, 0, 0), "equipment_id"},
		{"missing user", 1, 0, at(10, 0, 0), at(11, 0, 0), "user_id"},
		{"missing start", 1, 1, time.Time{}, at(11, 0, 0), "start"},
		{"missing end", 1, 1, at(10, 0, 0), time.Time{}, "end"},
		{"end equals start", 1, 1, at(10, 0, 0), at(10, 0, 0), "end"},
		{"end before start", 1, 1, at(11, 0, 0), at(10, 0, 0), "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReservation(tt.equipment, tt.user, tt.start, tt.end, "", testNow)
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

func TestReservation_CancelGuard(t *testing.T) {
	r, err := NewReservation(1, 1, at(10, 0, 0), at(11, 0, 0), "lab session", testNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Status != ReservationStatusConfirmed {
		t.Fatalf("Expected status %s, got %s", ReservationStatusConfirmed, r.Status)
	}

	if err := r.Cancel(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var ite *InvalidTransitionError
	if err := r.Cancel(); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError cancelling twice, got %v", err)
	}
	if err := r.Complete(); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError completing a cancelled reservation, got %v", err)
	}
	if r.Status != ReservationStatusCancelled {
		t.Errorf("Expected status %s, got %s", ReservationStatusCancelled, r.Status)
	}
}

func TestReservation_IsActive(t *testing.T) {
	r := &Reservation{Start: at(10, 0, 0), End: at(12, 0, 0), Status: ReservationStatusConfirmed}

	if !r.IsActive(at(10, 0, 0)) {
		t.Error("Expected reservation to be active at its start")
	}
	if !r.IsActive(at(12, 0, 0)) {
		t.Error("Expected reservation to be active at its end")
	}
	if r.IsActive(at(12, 0, 1)) {
		t.Error("Expected reservation to be inactive after its end")
	}

	r.Status = ReservationStatusCancelled
	if r.IsActive(at(11, 0, 0)) {
		t.Error("Expected cancelled reservation to be inactive")
	}
}
