package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// InventoryRequest carries the editable fields of an inventory item
type InventoryRequest struct {
	Component string                   `json:"component" validate:"notblank,max=200"`
	Category  domain.InventoryCategory `json:"category" validate:"required"`
	Quantity  int                      `json:"quantity" validate:"gte=0"`
	Minimum   int                      `json:"minimum" validate:"gte=0"`
	Supplier  string                   `json:"supplier" validate:"max=200"`
	Location  string                   `json:"location" validate:"max=200"`
	Notes     string                   `json:"notes"`
}

// InventoryView is an item as listed, with the advisory stock flag
type InventoryView struct {
	*domain.InventoryItem
	BelowMinimum bool `json:"below_minimum"`
}

func newInventoryView(item *domain.InventoryItem) InventoryView {
	return InventoryView{InventoryItem: item, BelowMinimum: item.BelowMinimum()}
}

// InventoryUseCase handles the consumables ledger
type InventoryUseCase struct {
	inventory ports.InventoryRepository
	audit     ports.AuditRecorder
	clock     ports.Clock
	log       logger.Logger
}

// NewInventoryUseCase creates a new inventory use case
func NewInventoryUseCase(inventory ports.InventoryRepository, audit ports.AuditRecorder, clock ports.Clock, log logger.Logger) *InventoryUseCase {
	return &InventoryUseCase{inventory: inventory, audit: audit, clock: orSystemClock(clock), log: orNopLogger(log)}
}

// Create adds a new item
func (uc *InventoryUseCase) Create(ctx context.Context, actorID int64, req InventoryRequest) (view InventoryView, err error) {
	defer observe("inventory.create", time.Now(), &err)

	item := &domain.InventoryItem{}
	if err := uc.prepare(item, req); err != nil {
		return InventoryView{}, err
	}

	if err := uc.inventory.Create(ctx, item); err != nil {
		return InventoryView{}, fmt.Errorf("failed to create inventory item: %w", err)
	}

	uc.warnIfLow(ctx, item)
	uc.audit.Record(ctx, actorID, domain.ActionInventoryCreated, fmt.Sprintf("inventory item %d %q created", item.ID, item.Component))
	return newInventoryView(item), nil
}

// Update overwrites an existing item and refreshes UpdatedAt
func (uc *InventoryUseCase) Update(ctx context.Context, actorID, id int64, req InventoryRequest) (view InventoryView, err error) {
	defer observe("inventory.update", time.Now(), &err)

	item, err := uc.inventory.FindByID(ctx, id)
	if err != nil {
		return InventoryView{}, fmt.Errorf("failed to get inventory item: %w", err)
	}
	if err := uc.prepare(item, req); err != nil {
		return InventoryView{}, err
	}

	if err := uc.inventory.Update(ctx, item); err != nil {
		return InventoryView{}, fmt.Errorf("failed to update inventory item: %w", err)
	}

	uc.warnIfLow(ctx, item)
	uc.audit.Record(ctx, actorID, domain.ActionInventoryUpdated, fmt.Sprintf("inventory item %d %q updated", item.ID, item.Component))
	return newInventoryView(item), nil
}

// Get retrieves an item by ID
func (uc *InventoryUseCase) Get(ctx context.Context, id int64) (InventoryView, error) {
	item, err := uc.inventory.FindByID(ctx, id)
	if err != nil {
		return InventoryView{}, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return newInventoryView(item), nil
}

// List retrieves items ordered by component
func (uc *InventoryUseCase) List(ctx context.Context, filter domain.InventoryFilter) ([]InventoryView, error) {
	items, err := uc.inventory.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	views := make([]InventoryView, 0, len(items))
	for _, item := range items {
		views = append(views, newInventoryView(item))
	}
	return views, nil
}

// Delete removes an item
func (uc *InventoryUseCase) Delete(ctx context.Context, actorID, id int64) (err error) {
	defer observe("inventory.delete", time.Now(), &err)

	item, err := uc.inventory.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get inventory item: %w", err)
	}
	if err := uc.inventory.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionInventoryDeleted, fmt.Sprintf("inventory item %d %q deleted", item.ID, item.Component))
	return nil
}

// Locations lists the distinct inventory locations for filters
func (uc *InventoryUseCase) Locations(ctx context.Context) ([]string, error) {
	locations, err := uc.inventory.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory locations: %w", err)
	}
	return locations, nil
}

func (uc *InventoryUseCase) prepare(item *domain.InventoryItem, req InventoryRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	item.Component = req.Component
	item.Category = req.Category
	item.Quantity = req.Quantity
	item.Minimum = req.Minimum
	item.Supplier = req.Supplier
	item.Location = req.Location
	item.Notes = req.Notes
	item.UpdatedAt = now(uc.clock)
	return item.Validate()
}

func (uc *InventoryUseCase) warnIfLow(ctx context.Context, item *domain.InventoryItem) {
	if !item.BelowMinimum() {
		return
	}
	uc.log.Warn(ctx, "inventory item below minimum", map[string]interface{}{
		"item_id":   item.ID,
		"component": item.Component,
		"quantity":  item.Quantity,
		"minimum":   item.Minimum,
	})
}
