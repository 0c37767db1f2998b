package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// InventoryHandler handles HTTP requests for the inventory ledger
type InventoryHandler struct {
	base
	inventory InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory InventoryService, log logger.Logger) *InventoryHandler {
	return &InventoryHandler{base: newBase(log), inventory: inventory}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/inventory", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/inventory", h.List).Methods("GET")
	router.HandleFunc("/api/v1/inventory/locations", h.Locations).Methods("GET")
	router.HandleFunc("/api/v1/inventory/{id:[0-9]+}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/inventory/{id:[0-9]+}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/inventory/{id:[0-9]+}", h.Delete).Methods("DELETE")
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.InventoryRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.inventory.Create(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, "Inventory item created successfully", item)
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req usecase.InventoryRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.inventory.Update(r.Context(), actor(r), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Inventory item updated successfully", item)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Inventory item retrieved successfully", item)
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.InventoryFilter{Location: queryString(r, "location")}
	if c := queryString(r, "category"); c != nil {
		category := domain.InventoryCategory(*c)
		filter.Category = &category
	}

	items, err := h.inventory.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Inventory retrieved successfully", items)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.inventory.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Inventory item deleted successfully", nil)
}

func (h *InventoryHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.inventory.Locations(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Locations retrieved successfully", locations)
}
