package persistence

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

var maintenanceColumns = []string{
	"id", "equipment_id", "category", "scheduled_on", "completed_on", "description", "technician",
	"status", "estimated_cost", "actual_cost", "notes",
}

// MaintenanceRepository implements ports.MaintenanceRepository
type MaintenanceRepository struct {
	g *Gateway
}

func NewMaintenanceRepository(g *Gateway) *MaintenanceRepository {
	return &MaintenanceRepository{g: g}
}

var _ ports.MaintenanceRepository = (*MaintenanceRepository)(nil)

func (r *MaintenanceRepository) Create(ctx context.Context, m *domain.MaintenanceRecord) error {
	id, err := r.g.insertReturningID(ctx, "create maintenance", r.g.builder().
		Insert("maintenance").
		Columns("equipment_id", "category", "scheduled_on", "completed_on", "description", "technician",
			"status", "estimated_cost", "actual_cost", "notes").
		Values(m.EquipmentID, string(m.Category), domain.FormatDate(m.ScheduledOn), dateOrNil(m.CompletedOn),
			m.Description, m.Technician, string(m.Status), m.EstimatedCost, float64OrNil(m.ActualCost), m.Notes))
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (r *MaintenanceRepository) FindByID(ctx context.Context, id int64) (*domain.MaintenanceRecord, error) {
	row, err := r.g.queryRowBuilder(ctx, "find maintenance", r.g.builder().
		Select(maintenanceColumns...).From("maintenance").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	m, err := scanMaintenance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "maintenance", ID: id}
		}
		return nil, err
	}
	return m, nil
}

func (r *MaintenanceRepository) Update(ctx context.Context, m *domain.MaintenanceRecord) error {
	n, err := r.g.execBuilder(ctx, "update maintenance", r.g.builder().
		Update("maintenance").
		Set("status", string(m.Status)).
		Set("completed_on", dateOrNil(m.CompletedOn)).
		Set("actual_cost", float64OrNil(m.ActualCost)).
		Set("description", m.Description).
		Set("technician", m.Technician).
		Set("notes", m.Notes).
		Where(sq.Eq{"id": m.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "maintenance", ID: m.ID}
	}
	return nil
}

// List orders records by scheduled date
func (r *MaintenanceRepository) List(ctx context.Context, filter domain.MaintenanceFilter) ([]*domain.MaintenanceRecord, error) {
	q := r.g.builder().Select(maintenanceColumns...).From("maintenance").OrderBy("scheduled_on", "id")
	if filter.Category != nil {
		q = q.Where(sq.Eq{"category": string(*filter.Category)})
	}
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.EquipmentID != nil {
		q = q.Where(sq.Eq{"equipment_id": *filter.EquipmentID})
	}

	rows, err := r.g.queryBuilder(ctx, "list maintenance", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.MaintenanceRecord
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list maintenance", err)
	}
	return out, nil
}

func scanMaintenance(s scanner) (*domain.MaintenanceRecord, error) {
	var (
		m           domain.MaintenanceRecord
		scheduledOn string
		completedOn sql.NullString
		actualCost  sql.NullFloat64
	)
	if err := s.Scan(&m.ID, &m.EquipmentID, &m.Category, &scheduledOn, &completedOn, &m.Description,
		&m.Technician, &m.Status, &m.EstimatedCost, &actualCost, &m.Notes); err != nil {
		return nil, translateError("scan maintenance", err)
	}

	d, err := domain.ParseDate(scheduledOn)
	if err != nil {
		return nil, err
	}
	m.ScheduledOn = d
	if m.CompletedOn, err = datePtr(completedOn); err != nil {
		return nil, err
	}
	if actualCost.Valid {
		c := actualCost.Float64
		m.ActualCost = &c
	}
	return &m, nil
}
