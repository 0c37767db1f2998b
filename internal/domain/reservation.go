package domain

import (
	"time"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// Reservation represents a time-boxed claim on a piece of equipment
type Reservation struct {
	ID          int64             `json:"id"`
	EquipmentID int64             `json:"equipment_id"`
	UserID      int64             `json:"user_id"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Purpose     string            `json:"purpose"`
	Status      ReservationStatus `json:"status"`
	RequestedAt time.Time         `json:"requested_at"`
}

// NewReservation creates a confirmed reservation after checking the interval.
// Times are truncated to whole seconds, the stored precision.
func NewReservation(equipmentID, userID int64, start, end time.Time, purpose string, now time.Time) (*Reservation, error) {
	if equipmentID <= 0 {
		return nil, NewValidationError("equipment_id", "is required")
	}
	if userID <= 0 {
		return nil, NewValidationError("user_id", "is required")
	}
	if start.IsZero() {
		return nil, NewValidationError("start", "is required")
	}
	if end.IsZero() {
		return nil, NewValidationError("end", "is required")
	}
	start = start.In(time.Local).Truncate(time.Second)
	end = end.In(time.Local).Truncate(time.Second)
	if !end.After(start) {
		return nil, NewValidationError("end", "must be after start")
	}
	return &Reservation{
		EquipmentID: equipmentID,
		UserID:      userID,
		Start:       start,
		End:         end,
		Purpose:     purpose,
		Status:      ReservationStatusConfirmed,
		RequestedAt: now,
	}, nil
}

// Overlaps applies the closed-interval rule: a shared endpoint counts as
// an overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return !start.After(r.End) && !r.Start.After(end)
}

// IsActive reports whether the reservation is confirmed and now falls inside it.
func (r *Reservation) IsActive(now time.Time) bool {
	return r.Status == ReservationStatusConfirmed && !now.Before(r.Start) && !now.After(r.End)
}

// Cancel releases a confirmed reservation
func (r *Reservation) Cancel() error {
	return r.finish(ReservationStatusCancelled)
}

// Complete marks a confirmed reservation as used
func (r *Reservation) Complete() error {
	return r.finish(ReservationStatusCompleted)
}

func (r *Reservation) finish(to ReservationStatus) error {
	if r.Status != ReservationStatusConfirmed {
		return &InvalidTransitionError{Entity: "reservation", From: string(r.Status), To: string(to)}
	}
	r.Status = to
	return nil
}

// ReservationFilter represents filters for listing reservations. From bounds
// the start, To bounds the end; both inclusive.
type ReservationFilter struct {
	Status      *ReservationStatus `json:"status,omitempty"`
	EquipmentID *int64             `json:"equipment_id,omitempty"`
	From        *time.Time         `json:"from,omitempty"`
	To          *time.Time         `json:"to,omitempty"`
}
