package domain

// Stats summarizes the lab for the statistics view
type Stats struct {
	EquipmentByStatus   map[string]int   `json:"equipment_by_status"`
	ReportsByCategory   map[string]int   `json:"reports_by_category"`
	ReportsByMonth      map[string]int   `json:"reports_by_month"`
	MaintenanceByStatus map[string]int   `json:"maintenance_by_status"`
	InventoryByCategory map[string]int   `json:"inventory_by_category"`
	ItemsBySupplier     map[string]int   `json:"items_by_supplier"`
	TopComponents       []ComponentStock `json:"top_components"`
}

// ComponentStock is one row of the top-stocked ranking
type ComponentStock struct {
	Component string `json:"component"`
	Quantity  int    `json:"quantity"`
}
