package usecase

import (
	"context"
	"fmt"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

const defaultTopComponents = 10

// StatsUseCase computes dashboard counts
type StatsUseCase struct {
	stats ports.StatsRepository
	topN  int
}

// NewStatsUseCase creates a new statistics use case
func NewStatsUseCase(stats ports.StatsRepository) *StatsUseCase {
	return &StatsUseCase{stats: stats, topN: defaultTopComponents}
}

// Summary returns every aggregate in one consistent read
func (uc *StatsUseCase) Summary(ctx context.Context) (*domain.Stats, error) {
	stats, err := uc.stats.Summary(ctx, uc.topN)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats, nil
}
