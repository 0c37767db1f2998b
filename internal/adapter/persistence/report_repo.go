package persistence

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

var reportColumns = []string{
	"id", "equipment_id", "category", "description", "created_at", "status", "resolution", "reported_by", "priority",
}

// ReportRepository implements ports.ReportRepository
type ReportRepository struct {
	g *Gateway
}

func NewReportRepository(g *Gateway) *ReportRepository {
	return &ReportRepository{g: g}
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	id, err := r.g.insertReturningID(ctx, "create report", r.g.builder().
		Insert("reports").
		Columns("equipment_id", "category", "description", "created_at", "status", "resolution", "reported_by", "priority").
		Values(int64OrNil(report.EquipmentID), string(report.Category), report.Description,
			domain.FormatTimestamp(report.CreatedAt), string(report.Status), textOrNil(report.Resolution),
			report.ReportedBy, string(report.Priority)))
	if err != nil {
		return err
	}
	report.ID = id
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	row, err := r.g.queryRowBuilder(ctx, "find report", r.g.builder().
		Select(reportColumns...).From("reports").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "report", ID: id}
		}
		return nil, err
	}
	return report, nil
}

// Update writes the workflow fields; the rest of a report is immutable
func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	n, err := r.g.execBuilder(ctx, "update report", r.g.builder().
		Update("reports").
		Set("status", string(report.Status)).
		Set("resolution", textOrNil(report.Resolution)).
		Where(sq.Eq{"id": report.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "report", ID: report.ID}
	}
	return nil
}

// List compares normalized text timestamps; both bounds are inclusive dates.
func (r *ReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	q := r.g.builder().Select(reportColumns...).From("reports").OrderBy("created_at DESC", "id DESC")
	if filter.Category != nil {
		q = q.Where(sq.Eq{"category": string(*filter.Category)})
	}
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Priority != nil {
		q = q.Where(sq.Eq{"priority": string(*filter.Priority)})
	}
	if filter.From != nil {
		q = q.Where(sq.GtOrEq{"created_at": domain.FormatDate(*filter.From)})
	}
	if filter.To != nil {
		q = q.Where(sq.Lt{"created_at": nextDay(*filter.To)})
	}

	rows, err := r.g.queryBuilder(ctx, "list reports", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list reports", err)
	}
	return out, nil
}

func (r *ReportRepository) CountByEquipment(ctx context.Context, equipmentID int64) (int, error) {
	return countWhere(ctx, r.g, "count reports", "reports", sq.Eq{"equipment_id": equipmentID})
}

func (r *ReportRepository) DeleteByEquipment(ctx context.Context, equipmentID int64) (int64, error) {
	return r.g.execBuilder(ctx, "delete reports", r.g.builder().
		Delete("reports").Where(sq.Eq{"equipment_id": equipmentID}))
}

func scanReport(s scanner) (*domain.Report, error) {
	var (
		report      domain.Report
		equipmentID sql.NullInt64
		resolution  sql.NullString
		createdAt   string
	)
	if err := s.Scan(&report.ID, &equipmentID, &report.Category, &report.Description, &createdAt,
		&report.Status, &resolution, &report.ReportedBy, &report.Priority); err != nil {
		return nil, translateError("scan report", err)
	}

	if equipmentID.Valid {
		id := equipmentID.Int64
		report.EquipmentID = &id
	}
	report.Resolution = stringPtr(resolution)

	t, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	report.CreatedAt = t
	return &report, nil
}

func countWhere(ctx context.Context, g *Gateway, op, table string, where sq.Sqlizer) (int, error) {
	row, err := g.queryRowBuilder(ctx, op, g.builder().Select("COUNT(*)").From(table).Where(where))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, translateError(op, err)
	}
	return n, nil
}
