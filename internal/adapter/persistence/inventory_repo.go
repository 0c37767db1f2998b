package persistence

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

var inventoryColumns = []string{
	"id", "component", "category", "quantity", "minimum", "supplier", "location", "updated_at", "notes",
}

// InventoryRepository implements ports.InventoryRepository
type InventoryRepository struct {
	g *Gateway
}

func NewInventoryRepository(g *Gateway) *InventoryRepository {
	return &InventoryRepository{g: g}
}

var _ ports.InventoryRepository = (*InventoryRepository)(nil)

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	id, err := r.g.insertReturningID(ctx, "create inventory item", r.g.builder().
		Insert("inventory").
		Columns("component", "category", "quantity", "minimum", "supplier", "location", "updated_at", "notes").
		Values(item.Component, string(item.Category), item.Quantity, item.Minimum, item.Supplier, item.Location,
			domain.FormatTimestamp(item.UpdatedAt), item.Notes))
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	row, err := r.g.queryRowBuilder(ctx, "find inventory item", r.g.builder().
		Select(inventoryColumns...).From("inventory").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	item, err := scanInventoryItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "inventory item", ID: id}
		}
		return nil, err
	}
	return item, nil
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	n, err := r.g.execBuilder(ctx, "update inventory item", r.g.builder().
		Update("inventory").
		Set("component", item.Component).
		Set("category", string(item.Category)).
		Set("quantity", item.Quantity).
		Set("minimum", item.Minimum).
		Set("supplier", item.Supplier).
		Set("location", item.Location).
		Set("updated_at", domain.FormatTimestamp(item.UpdatedAt)).
		Set("notes", item.Notes).
		Where(sq.Eq{"id": item.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "inventory item", ID: item.ID}
	}
	return nil
}

// List orders items by component name
func (r *InventoryRepository) List(ctx context.Context, filter domain.InventoryFilter) ([]*domain.InventoryItem, error) {
	q := r.g.builder().Select(inventoryColumns...).From("inventory").OrderBy("component", "id")
	if filter.Category != nil {
		q = q.Where(sq.Eq{"category": string(*filter.Category)})
	}
	if filter.Location != nil {
		q = q.Where(sq.Eq{"location": *filter.Location})
	}

	rows, err := r.g.queryBuilder(ctx, "list inventory", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list inventory", err)
	}
	return out, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.g.execBuilder(ctx, "delete inventory item", r.g.builder().Delete("inventory").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "inventory item", ID: id}
	}
	return nil
}

func (r *InventoryRepository) Locations(ctx context.Context) ([]string, error) {
	rows, err := r.g.queryBuilder(ctx, "list inventory locations", r.g.builder().
		Select("DISTINCT location").From("inventory").
		Where(sq.NotEq{"location": ""}).
		OrderBy("location"))
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

func scanInventoryItem(s scanner) (*domain.InventoryItem, error) {
	var (
		item      domain.InventoryItem
		updatedAt string
	)
	if err := s.Scan(&item.ID, &item.Component, &item.Category, &item.Quantity, &item.Minimum,
		&item.Supplier, &item.Location, &updatedAt, &item.Notes); err != nil {
		return nil, translateError("scan inventory item", err)
	}

	t, err := parseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}
	item.UpdatedAt = t
	return &item, nil
}
