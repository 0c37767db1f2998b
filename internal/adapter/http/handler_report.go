package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// ReportHandler handles HTTP requests for incident reports
type ReportHandler struct {
	base
	reports ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportService, log logger.Logger) *ReportHandler {
	return &ReportHandler{base: newBase(log), reports: reports}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/reports", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/reports", h.List).Methods("GET")
	router.HandleFunc("/api/v1/reports/{id:[0-9]+}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/reports/{id:[0-9]+}/start", h.MarkInProgress).Methods("POST")
	router.HandleFunc("/api/v1/reports/{id:[0-9]+}/resolve", h.Resolve).Methods("POST")
}

// Create handles filing a report; the actor becomes the reporter
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateReportRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	report, err := h.reports.Create(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, "Report created successfully", report)
}

func (h *ReportHandler) MarkInProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	report, err := h.reports.MarkInProgress(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Report in progress", report)
}

func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		Resolution string `json:"resolution"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	report, err := h.reports.Resolve(r.Context(), actor(r), id, req.Resolution)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Report resolved successfully", report)
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Report retrieved successfully", report)
}

// List handles listing reports; from and to are inclusive dates
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.ReportFilter
	if c := queryString(r, "category"); c != nil {
		category := domain.ReportCategory(*c)
		filter.Category = &category
	}
	if s := queryString(r, "status"); s != nil {
		status := domain.ReportStatus(*s)
		filter.Status = &status
	}
	if p := queryString(r, "priority"); p != nil {
		priority := domain.Priority(*p)
		filter.Priority = &priority
	}
	var err error
	if filter.From, err = queryDate(r, "from"); err != nil {
		h.fail(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		h.fail(w, r, err)
		return
	}

	reports, err := h.reports.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Reports retrieved successfully", reports)
}
