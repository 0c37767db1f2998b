package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// ReservationHandler handles HTTP requests for reservations
type ReservationHandler struct {
	base
	reservations ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservations ReservationService, log logger.Logger) *ReservationHandler {
	return &ReservationHandler{base: newBase(log), reservations: reservations}
}

// RegisterRoutes registers reservation routes
func (h *ReservationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/reservations", h.Book).Methods("POST")
	router.HandleFunc("/api/v1/reservations", h.List).Methods("GET")
	router.HandleFunc("/api/v1/reservations/{id:[0-9]+}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/reservations/{id:[0-9]+}/cancel", h.Cancel).Methods("POST")
	router.HandleFunc("/api/v1/reservations/{id:[0-9]+}/complete", h.Complete).Methods("POST")
}

// Book handles reservation requests. Overlaps answer 409.
func (h *ReservationHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req usecase.BookRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = actor(r)
	}

	reservation, err := h.reservations.Book(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, "Reservation confirmed", reservation)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	reservation, err := h.reservations.Cancel(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation cancelled", reservation)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	reservation, err := h.reservations.Complete(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation completed", reservation)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	reservation, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservation retrieved successfully", reservation)
}

// List handles listing reservations; from bounds the start and to the end
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter domain.ReservationFilter
		err    error
	)
	if s := queryString(r, "status"); s != nil {
		status := domain.ReservationStatus(*s)
		filter.Status = &status
	}
	if filter.EquipmentID, err = queryInt64(r, "equipment_id"); err != nil {
		h.fail(w, r, err)
		return
	}
	if filter.From, err = queryDate(r, "from"); err != nil {
		h.fail(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		h.fail(w, r, err)
		return
	}

	reservations, err := h.reservations.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Reservations retrieved successfully", reservations)
}
