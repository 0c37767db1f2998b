package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// IntegrityUseCase coordinates deletions that touch several tables.
// Maintenance records, reservations of a deleted user and access log entries
// are left in place.
type IntegrityUseCase struct {
	equipment    ports.EquipmentRepository
	reports      ports.ReportRepository
	reservations ports.ReservationRepository
	users        ports.UserRepository
	tx           ports.TxManager
	audit        ports.AuditRecorder
	log          logger.Logger
}

// NewIntegrityUseCase creates a new integrity coordinator
func NewIntegrityUseCase(
	equipment ports.EquipmentRepository,
	reports ports.ReportRepository,
	reservations ports.ReservationRepository,
	users ports.UserRepository,
	tx ports.TxManager,
	audit ports.AuditRecorder,
	log logger.Logger,
) *IntegrityUseCase {
	return &IntegrityUseCase{
		equipment:    equipment,
		reports:      reports,
		reservations: reservations,
		users:        users,
		tx:           tx,
		audit:        audit,
		log:          orNopLogger(log),
	}
}

// EquipmentDependents counts the reports and reservations that would be
// deleted with the equipment
func (uc *IntegrityUseCase) EquipmentDependents(ctx context.Context, equipmentID int64) (domain.Dependents, error) {
	if _, err := uc.equipment.FindByID(ctx, equipmentID); err != nil {
		return domain.Dependents{}, fmt.Errorf("failed to get equipment: %w", err)
	}
	return uc.dependents(ctx, equipmentID)
}

func (uc *IntegrityUseCase) dependents(ctx context.Context, equipmentID int64) (domain.Dependents, error) {
	reports, err := uc.reports.CountByEquipment(ctx, equipmentID)
	if err != nil {
		return domain.Dependents{}, fmt.Errorf("failed to count reports: %w", err)
	}
	reservations, err := uc.reservations.CountByEquipment(ctx, equipmentID)
	if err != nil {
		return domain.Dependents{}, fmt.Errorf("failed to count reservations: %w", err)
	}
	return domain.Dependents{Reports: reports, Reservations: reservations}, nil
}

// DeleteEquipment removes the equipment with its reports and reservations in
// one transaction. With dependents and no confirmation it returns their
// counts and domain.ErrConfirmationRequired without deleting anything.
func (uc *IntegrityUseCase) DeleteEquipment(ctx context.Context, actorID, equipmentID int64, confirmed bool) (deps domain.Dependents, err error) {
	defer observe("equipment.delete", time.Now(), &err)

	var name string
	var removed domain.Dependents
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		equipment, err := uc.equipment.FindByID(ctx, equipmentID)
		if err != nil {
			return fmt.Errorf("failed to get equipment: %w", err)
		}
		name = equipment.Name

		deps, err = uc.dependents(ctx, equipmentID)
		if err != nil {
			return err
		}
		if deps.Any() && !confirmed {
			return domain.ErrConfirmationRequired
		}

		reports, err := uc.reports.DeleteByEquipment(ctx, equipmentID)
		if err != nil {
			return fmt.Errorf("failed to delete reports: %w", err)
		}
		reservations, err := uc.reservations.DeleteByEquipment(ctx, equipmentID)
		if err != nil {
			return fmt.Errorf("failed to delete reservations: %w", err)
		}
		if err := uc.equipment.Delete(ctx, equipmentID); err != nil {
			return fmt.Errorf("failed to delete equipment: %w", err)
		}
		removed = domain.Dependents{Reports: int(reports), Reservations: int(reservations)}
		return nil
	})
	if err != nil {
		return deps, err
	}

	uc.log.Info(ctx, "equipment deleted", map[string]interface{}{
		"equipment_id": equipmentID,
		"reports":      removed.Reports,
		"reservations": removed.Reservations,
	})
	uc.audit.Record(ctx, actorID, domain.ActionEquipmentDeleted, fmt.Sprintf(
		"equipment %d %q deleted with %d reports and %d reservations", equipmentID, name, removed.Reports, removed.Reservations,
	))
	return removed, nil
}

// DeleteUser removes a user. The primordial administrator can never be
// deleted.
func (uc *IntegrityUseCase) DeleteUser(ctx context.Context, actorID, userID int64) (err error) {
	defer observe("user.delete", time.Now(), &err)

	if err := (&domain.User{ID: userID}).CanBeDeleted(); err != nil {
		return err
	}

	var login string
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := uc.users.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		login = user.Login
		if err := uc.users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.audit.Record(ctx, actorID, domain.ActionUserDeleted, fmt.Sprintf("user %d %q deleted", userID, login))
	return nil
}
