package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

var equipmentColumns = []string{
	"id", "name", "category", "model", "serial", "status", "location", "acquired_on", "last_maintenance", "notes",
}

// EquipmentRepository implements ports.EquipmentRepository
type EquipmentRepository struct {
	g *Gateway
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(g *Gateway) *EquipmentRepository {
	return &EquipmentRepository{g: g}
}

var _ ports.EquipmentRepository = (*EquipmentRepository)(nil)

// Create saves new equipment
func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	id, err := r.g.insertReturningID(ctx, "create equipment", r.g.builder().
		Insert("equipment").
		Columns("name", "category", "model", "serial", "status", "location", "acquired_on", "last_maintenance", "notes").
		Values(e.Name, string(e.Category), e.Model, textOrNil(e.Serial), string(e.Status), e.Location,
			dateOrNil(e.AcquiredOn), dateOrNil(e.LastMaintenance), e.Notes))
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// FindByID retrieves equipment by its ID
func (r *EquipmentRepository) FindByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	row, err := r.g.queryRowBuilder(ctx, "find equipment", r.g.builder().
		Select(equipmentColumns...).From("equipment").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	e, err := scanEquipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "equipment", ID: id}
		}
		return nil, err
	}
	return e, nil
}

// Update overwrites every editable field
func (r *EquipmentRepository) Update(ctx context.Context, e *domain.Equipment) error {
	n, err := r.g.execBuilder(ctx, "update equipment", r.g.builder().
		Update("equipment").
		Set("name", e.Name).
		Set("category", string(e.Category)).
		Set("model", e.Model).
		Set("serial", textOrNil(e.Serial)).
		Set("status", string(e.Status)).
		Set("location", e.Location).
		Set("acquired_on", dateOrNil(e.AcquiredOn)).
		Set("notes", e.Notes).
		Where(sq.Eq{"id": e.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "equipment", ID: e.ID}
	}
	return nil
}

// SetLastMaintenance writes the derived last-maintenance date
func (r *EquipmentRepository) SetLastMaintenance(ctx context.Context, id int64, on time.Time) error {
	n, err := r.g.execBuilder(ctx, "set last maintenance", r.g.builder().
		Update("equipment").
		Set("last_maintenance", domain.FormatDate(on)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "equipment", ID: id}
	}
	return nil
}

// List retrieves equipment based on filter criteria
func (r *EquipmentRepository) List(ctx context.Context, filter domain.EquipmentFilter) ([]*domain.Equipment, error) {
	q := r.g.builder().Select(equipmentColumns...).From("equipment").OrderBy("name", "id")
	if filter.Category != nil {
		q = q.Where(sq.Eq{"category": string(*filter.Category)})
	}
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Location != nil {
		q = q.Where(sq.Eq{"location": *filter.Location})
	}

	rows, err := r.g.queryBuilder(ctx, "list equipment", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list equipment", err)
	}
	return out, nil
}

// Delete removes equipment
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.g.execBuilder(ctx, "delete equipment", r.g.builder().Delete("equipment").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "equipment", ID: id}
	}
	return nil
}

// Locations returns the distinct non-empty locations
func (r *EquipmentRepository) Locations(ctx context.Context) ([]string, error) {
	rows, err := r.g.queryBuilder(ctx, "list equipment locations", r.g.builder().
		Select("DISTINCT location").From("equipment").
		Where(sq.NotEq{"location": ""}).
		OrderBy("location"))
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

func scanEquipment(s scanner) (*domain.Equipment, error) {
	var (
		e               domain.Equipment
		serial          sql.NullString
		acquiredOn      sql.NullString
		lastMaintenance sql.NullString
	)
	if err := s.Scan(&e.ID, &e.Name, &e.Category, &e.Model, &serial, &e.Status, &e.Location,
		&acquiredOn, &lastMaintenance, &e.Notes); err != nil {
		return nil, translateError("scan equipment", err)
	}

	e.Serial = stringPtr(serial)
	var err error
	if e.AcquiredOn, err = datePtr(acquiredOn); err != nil {
		return nil, fmt.Errorf("equipment %d: %w", e.ID, err)
	}
	if e.LastMaintenance, err = datePtr(lastMaintenance); err != nil {
		return nil, fmt.Errorf("equipment %d: %w", e.ID, err)
	}
	return &e, nil
}
