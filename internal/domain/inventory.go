package domain

import (
	"strings"
	"time"
)

// InventoryCategory represents the kind of a stocked component
type InventoryCategory string

const (
	InventoryCategoryHardware   InventoryCategory = "HARDWARE"
	InventoryCategorySoftware   InventoryCategory = "SOFTWARE"
	InventoryCategoryNetwork    InventoryCategory = "NETWORK"
	InventoryCategoryConsumable InventoryCategory = "CONSUMABLE"
	InventoryCategoryOther      InventoryCategory = "OTHER"
)

func (c InventoryCategory) Valid() bool {
	switch c {
	case InventoryCategoryHardware, InventoryCategorySoftware, InventoryCategoryNetwork,
		InventoryCategoryConsumable, InventoryCategoryOther:
		return true
	}
	return false
}

// InventoryItem represents a stocked consumable or component
type InventoryItem struct {
	ID        int64             `json:"id"`
	Component string            `json:"component"`
	Category  InventoryCategory `json:"category"`
	Quantity  int               `json:"quantity"`
	Minimum   int               `json:"minimum"`
	Supplier  string            `json:"supplier"`
	Location  string            `json:"location"`
	UpdatedAt time.Time         `json:"updated_at"`
	Notes     string            `json:"notes"`
}

// BelowMinimum is advisory only.
func (i *InventoryItem) BelowMinimum() bool {
	return i.Quantity < i.Minimum
}

func (i *InventoryItem) Validate() error {
	i.Component = strings.TrimSpace(i.Component)
	if i.Component == "" {
		return NewValidationError("component", "is required")
	}
	if !i.Category.Valid() {
		return NewValidationError("category", "unknown inventory category")
	}
	if i.Quantity < 0 {
		return NewValidationError("quantity", "must not be negative")
	}
	if i.Minimum < 0 {
		return NewValidationError("minimum", "must not be negative")
	}
	return nil
}

// InventoryFilter represents filters for listing inventory
type InventoryFilter struct {
	Category *InventoryCategory `json:"category,omitempty"`
	Location *string            `json:"location,omitempty"`
}
