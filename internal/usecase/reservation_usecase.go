package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

const defaultBookingRetries = 3

// BookRequest represents the request to reserve equipment
type BookRequest struct {
	EquipmentID int64     `json:"equipment_id" validate:"required,gt=0"`
	UserID      int64     `json:"user_id" validate:"required,gt=0"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	Purpose     string    `json:"purpose" validate:"max=500"`
}

// ReservationView is a reservation as listed, with the active flag evaluated
// at read time
type ReservationView struct {
	*domain.Reservation
	Active bool `json:"active"`
}

// ReservationUseCase handles booking of equipment
type ReservationUseCase struct {
	reservations ports.ReservationRepository
	equipment    ports.EquipmentRepository
	users        ports.UserRepository
	tx           ports.TxManager
	locker       ports.EquipmentLocker
	audit        ports.AuditRecorder
	clock        ports.Clock
	log          logger.Logger
	maxRetries   uint64
}

// NewReservationUseCase creates a new reservation use case. maxRetries bounds
// the retries after a serialization failure; zero uses the default.
func NewReservationUseCase(
	reservations ports.ReservationRepository,
	equipment ports.EquipmentRepository,
	users ports.UserRepository,
	tx ports.TxManager,
	locker ports.EquipmentLocker,
	audit ports.AuditRecorder,
	clock ports.Clock,
	log logger.Logger,
	maxRetries int,
) *ReservationUseCase {
	if maxRetries <= 0 {
		maxRetries = defaultBookingRetries
	}
	return &ReservationUseCase{
		reservations: reservations,
		equipment:    equipment,
		users:        users,
		tx:           tx,
		locker:       locker,
		audit:        audit,
		clock:        orSystemClock(clock),
		log:          orNopLogger(log),
		maxRetries:   uint64(maxRetries),
	}
}

// Book creates a CONFIRMED reservation unless a confirmed reservation of the
// same equipment overlaps it. Shared endpoints count as overlapping.
func (uc *ReservationUseCase) Book(ctx context.Context, actorID int64, req BookRequest) (reservation *domain.Reservation, err error) {
	defer observe("reservation.book", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	reservation, err = domain.NewReservation(req.EquipmentID, req.UserID, req.Start, req.End, req.Purpose, now(uc.clock))
	if err != nil {
		return nil, err
	}

	release, err := uc.locker.Lock(ctx, req.EquipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock equipment: %w", err)
	}
	defer release()

	backoff := retry.WithMaxRetries(uc.maxRetries, retry.NewExponential(20*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
			return uc.insertIfFree(ctx, reservation)
		})
		if domain.IsRetryable(err) {
			bookingRetriesTotal.Inc()
			uc.log.Warn(ctx, "retrying booking after serialization failure", map[string]interface{}{
				"equipment_id": req.EquipmentID,
				"error":        err.Error(),
			})
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actorID, domain.ActionReservationBooked, fmt.Sprintf(
		"reservation %d of equipment %d for user %d from %s to %s",
		reservation.ID, reservation.EquipmentID, reservation.UserID,
		domain.FormatTimestamp(reservation.Start), domain.FormatTimestamp(reservation.End),
	))
	return reservation, nil
}

func (uc *ReservationUseCase) insertIfFree(ctx context.Context, reservation *domain.Reservation) error {
	if _, err := uc.equipment.FindByID(ctx, reservation.EquipmentID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewValidationError("equipment_id", "unknown equipment")
		}
		return fmt.Errorf("failed to get equipment: %w", err)
	}
	if _, err := uc.users.FindByID(ctx, reservation.UserID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewValidationError("user_id", "unknown user")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	candidates, err := uc.reservations.ListConfirmedEndingAfter(ctx, reservation.EquipmentID, reservation.Start)
	if err != nil {
		return fmt.Errorf("failed to check reservation conflicts: %w", err)
	}
	for _, other := range candidates {
		if other.Overlaps(reservation.Start, reservation.End) {
			bookingConflictsTotal.Inc()
			return &domain.ConflictError{EquipmentID: reservation.EquipmentID, ReservationID: other.ID}
		}
	}

	if err := uc.reservations.Create(ctx, reservation); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// Cancel releases a CONFIRMED reservation
func (uc *ReservationUseCase) Cancel(ctx context.Context, actorID, reservationID int64) (reservation *domain.Reservation, err error) {
	defer observe("reservation.cancel", time.Now(), &err)

	reservation, err = uc.finish(ctx, reservationID, (*domain.Reservation).Cancel)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actorID, domain.ActionReservationCancelled, fmt.Sprintf("reservation %d cancelled", reservation.ID))
	return reservation, nil
}

// Complete marks a CONFIRMED reservation as used
func (uc *ReservationUseCase) Complete(ctx context.Context, actorID, reservationID int64) (reservation *domain.Reservation, err error) {
	defer observe("reservation.complete", time.Now(), &err)

	reservation, err = uc.finish(ctx, reservationID, (*domain.Reservation).Complete)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actorID, domain.ActionReservationCompleted, fmt.Sprintf("reservation %d completed", reservation.ID))
	return reservation, nil
}

func (uc *ReservationUseCase) finish(ctx context.Context, reservationID int64, change func(*domain.Reservation) error) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := uc.reservations.FindByID(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("failed to get reservation: %w", err)
		}
		if err := change(r); err != nil {
			return err
		}
		if err := uc.reservations.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		reservation = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Get retrieves a reservation by ID
func (uc *ReservationUseCase) Get(ctx context.Context, id int64) (ReservationView, error) {
	reservation, err := uc.reservations.FindByID(ctx, id)
	if err != nil {
		return ReservationView{}, fmt.Errorf("failed to get reservation: %w", err)
	}
	return ReservationView{Reservation: reservation, Active: reservation.IsActive(uc.clock())}, nil
}

// List retrieves reservations ordered by start
func (uc *ReservationUseCase) List(ctx context.Context, filter domain.ReservationFilter) ([]ReservationView, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}

	reservations, err := uc.reservations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	at := uc.clock()
	views := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, ReservationView{Reservation: r, Active: r.IsActive(at)})
	}
	return views, nil
}

// AvailableEquipment lists the OPERATIONAL equipment that can be booked
func (uc *ReservationUseCase) AvailableEquipment(ctx context.Context) ([]*domain.Equipment, error) {
	status := domain.EquipmentStatusOperational
	items, err := uc.equipment.List(ctx, domain.EquipmentFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list available equipment: %w", err)
	}
	return items, nil
}
