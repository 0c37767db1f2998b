package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// EquipmentHandler handles HTTP requests for equipment
type EquipmentHandler struct {
	base
	equipment    EquipmentService
	integrity    IntegrityService
	reservations ReservationService
}

// NewEquipmentHandler creates a new equipment handler
func NewEquipmentHandler(equipment EquipmentService, integrity IntegrityService, reservations ReservationService, log logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{base: newBase(log), equipment: equipment, integrity: integrity, reservations: reservations}
}

// RegisterRoutes registers equipment routes
func (h *EquipmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/equipment", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/equipment", h.List).Methods("GET")
	router.HandleFunc("/api/v1/equipment/locations", h.Locations).Methods("GET")
	router.HandleFunc("/api/v1/equipment/available", h.Available).Methods("GET")
	router.HandleFunc("/api/v1/equipment/{id:[0-9]+}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/equipment/{id:[0-9]+}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/equipment/{id:[0-9]+}", h.Delete).Methods("DELETE")
	router.HandleFunc("/api/v1/equipment/{id:[0-9]+}/dependents", h.Dependents).Methods("GET")
}

// Create handles equipment registration
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.EquipmentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	equipment, err := h.equipment.Create(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, "Equipment created successfully", equipment)
}

// Update handles equipment edits
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req usecase.EquipmentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	equipment, err := h.equipment.Update(r.Context(), actor(r), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Equipment updated successfully", equipment)
}

// Get handles retrieving a single piece of equipment
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	equipment, err := h.equipment.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Equipment retrieved successfully", equipment)
}

// List handles listing equipment with filters
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.EquipmentFilter{Location: queryString(r, "location")}
	if c := queryString(r, "category"); c != nil {
		category := domain.EquipmentCategory(*c)
		filter.Category = &category
	}
	if s := queryString(r, "status"); s != nil {
		status := domain.EquipmentStatus(*s)
		filter.Status = &status
	}

	items, err := h.equipment.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Equipment retrieved successfully", items)
}

// Locations handles listing distinct equipment locations
func (h *EquipmentHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.equipment.Locations(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Locations retrieved successfully", locations)
}

// Available handles listing the equipment that can be booked
func (h *EquipmentHandler) Available(w http.ResponseWriter, r *http.Request) {
	items, err := h.reservations.AvailableEquipment(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Available equipment retrieved successfully", items)
}

// Dependents handles counting what a deletion would remove
func (h *EquipmentHandler) Dependents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	deps, err := h.integrity.EquipmentDependents(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Dependents counted successfully", deps)
}

// Delete handles cascading deletion. Pass ?confirm=true when the equipment
// has reports or reservations.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"

	deps, err := h.integrity.DeleteEquipment(r.Context(), actor(r), id, confirmed)
	if err != nil {
		if errors.Is(err, domain.ErrConfirmationRequired) {
			h.failWith(w, r, err, deps)
			return
		}
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Equipment deleted successfully", deps)
}
