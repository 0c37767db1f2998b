package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// MaintenanceHandler handles HTTP requests for maintenance planning
type MaintenanceHandler struct {
	base
	maintenance MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenance MaintenanceService, log logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{base: newBase(log), maintenance: maintenance}
}

// RegisterRoutes registers maintenance routes
func (h *MaintenanceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/maintenance", h.Schedule).Methods("POST")
	router.HandleFunc("/api/v1/maintenance", h.List).Methods("GET")
	router.HandleFunc("/api/v1/maintenance/{id:[0-9]+}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/maintenance/{id:[0-9]+}/complete", h.Complete).Methods("POST")
	router.HandleFunc("/api/v1/maintenance/{id:[0-9]+}/cancel", h.Cancel).Methods("POST")
}

func (h *MaintenanceHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req usecase.ScheduleRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.maintenance.Schedule(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, "Maintenance scheduled", record)
}

// Complete closes the record and updates the equipment's last maintenance date
func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req usecase.CompleteMaintenanceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.maintenance.Complete(r.Context(), actor(r), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Maintenance completed", record)
}

func (h *MaintenanceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.maintenance.Cancel(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Maintenance cancelled", record)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.maintenance.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Maintenance retrieved successfully", record)
}

func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter domain.MaintenanceFilter
		err    error
	)
	if c := queryString(r, "category"); c != nil {
		category := domain.MaintenanceCategory(*c)
		filter.Category = &category
	}
	if s := queryString(r, "status"); s != nil {
		status := domain.MaintenanceStatus(*s)
		filter.Status = &status
	}
	if filter.EquipmentID, err = queryInt64(r, "equipment_id"); err != nil {
		h.fail(w, r, err)
		return
	}

	records, err := h.maintenance.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Maintenance retrieved successfully", records)
}
