package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// CreateReportRequest represents the request to file an incident report
type CreateReportRequest struct {
	EquipmentID *int64                `json:"equipment_id,omitempty" validate:"omitempty,gt=0"`
	Category    domain.ReportCategory `json:"category" validate:"required"`
	Description string                `json:"description" validate:"notblank,max=2000"`
	Priority    domain.Priority       `json:"priority"`
}

// ReportUseCase handles the report workflow
type ReportUseCase struct {
	reports   ports.ReportRepository
	equipment ports.EquipmentRepository
	tx        ports.TxManager
	audit     ports.AuditRecorder
	clock     ports.Clock
	log       logger.Logger
}

// NewReportUseCase creates a new report use case
func NewReportUseCase(
	reports ports.ReportRepository,
	equipment ports.EquipmentRepository,
	tx ports.TxManager,
	audit ports.AuditRecorder,
	clock ports.Clock,
	log logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		reports:   reports,
		equipment: equipment,
		tx:        tx,
		audit:     audit,
		clock:     orSystemClock(clock),
		log:       orNopLogger(log),
	}
}

// Create files a new OPEN report on behalf of the actor
func (uc *ReportUseCase) Create(ctx context.Context, actorID int64, req CreateReportRequest) (report *domain.Report, err error) {
	defer observe("report.create", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	report, err = domain.NewReport(req.EquipmentID, req.Category, req.Description, req.Priority, actorID, now(uc.clock))
	if err != nil {
		return nil, err
	}

	if req.EquipmentID != nil {
		if _, err := uc.equipment.FindByID(ctx, *req.EquipmentID); err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewValidationError("equipment_id", "unknown equipment")
			}
			return nil, fmt.Errorf("failed to get equipment: %w", err)
		}
	}

	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionReportCreated, fmt.Sprintf("report %d created (%s, %s)", report.ID, report.Category, report.Priority))
	return report, nil
}

// MarkInProgress moves an OPEN report into work
func (uc *ReportUseCase) MarkInProgress(ctx context.Context, actorID, reportID int64) (report *domain.Report, err error) {
	defer observe("report.in_progress", time.Now(), &err)

	report, err = uc.transition(ctx, reportID, (*domain.Report).MarkInProgress)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actorID, domain.ActionReportInProgress, fmt.Sprintf("report %d in progress", report.ID))
	return report, nil
}

// Resolve closes a report with a resolution text
func (uc *ReportUseCase) Resolve(ctx context.Context, actorID, reportID int64, resolution string) (report *domain.Report, err error) {
	defer observe("report.resolve", time.Now(), &err)

	report, err = uc.transition(ctx, reportID, func(r *domain.Report) error {
		return r.Resolve(resolution)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, actorID, domain.ActionReportResolved, fmt.Sprintf("report %d resolved", report.ID))
	return report, nil
}

// transition reads, changes and writes the report in one transaction.
func (uc *ReportUseCase) transition(ctx context.Context, reportID int64, change func(*domain.Report) error) (*domain.Report, error) {
	var report *domain.Report
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := uc.reports.FindByID(ctx, reportID)
		if err != nil {
			return fmt.Errorf("failed to get report: %w", err)
		}
		if err := change(r); err != nil {
			return err
		}
		if err := uc.reports.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Get retrieves a report by ID
func (uc *ReportUseCase) Get(ctx context.Context, id int64) (*domain.Report, error) {
	report, err := uc.reports.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// List retrieves reports newest first. The date range is inclusive.
func (uc *ReportUseCase) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}

	reports, err := uc.reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
