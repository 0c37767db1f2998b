package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// StatsRepository implements ports.StatsRepository with GROUP BY queries
type StatsRepository struct {
	g *Gateway
}

func NewStatsRepository(g *Gateway) *StatsRepository {
	return &StatsRepository{g: g}
}

var _ ports.StatsRepository = (*StatsRepository)(nil)

// Summary runs every aggregate in one read transaction so the numbers agree.
func (r *StatsRepository) Summary(ctx context.Context, topN int) (*domain.Stats, error) {
	stats := &domain.Stats{}
	err := r.g.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if stats.EquipmentByStatus, err = r.countBy(ctx, "equipment", "status", "COUNT(*)"); err != nil {
			return err
		}
		if stats.ReportsByCategory, err = r.countBy(ctx, "reports", "category", "COUNT(*)"); err != nil {
			return err
		}
		// first seven characters of a normalized timestamp are YYYY-MM
		if stats.ReportsByMonth, err = r.countBy(ctx, "reports", "SUBSTR(created_at, 1, 7)", "COUNT(*)"); err != nil {
			return err
		}
		if stats.MaintenanceByStatus, err = r.countBy(ctx, "maintenance", "status", "COUNT(*)"); err != nil {
			return err
		}
		if stats.InventoryByCategory, err = r.countBy(ctx, "inventory", "category", "SUM(quantity)"); err != nil {
			return err
		}
		if stats.ItemsBySupplier, err = r.countBy(ctx, "inventory", "supplier", "COUNT(*)"); err != nil {
			return err
		}
		stats.TopComponents, err = r.topComponents(ctx, topN)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *StatsRepository) countBy(ctx context.Context, table, key, agg string) (map[string]int, error) {
	rows, err := r.g.queryBuilder(ctx, "stats "+table, r.g.builder().
		Select(key+" AS k", "COALESCE("+agg+", 0)").
		From(table).
		GroupBy(key))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return nil, translateError("scan stats", err)
		}
		out[k] = n
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("stats "+table, err)
	}
	return out, nil
}

func (r *StatsRepository) topComponents(ctx context.Context, n int) ([]domain.ComponentStock, error) {
	rows, err := r.g.queryBuilder(ctx, "stats top components", r.g.builder().
		Select("component", "quantity").
		From("inventory").
		Where(sq.Gt{"quantity": 0}).
		OrderBy("quantity DESC", "component").
		Limit(uint64(n)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ComponentStock{}
	for rows.Next() {
		var c domain.ComponentStock
		if err := rows.Scan(&c.Component, &c.Quantity); err != nil {
			return nil, translateError("scan stats", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("stats top components", err)
	}
	return out, nil
}
