package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
)

// AdminHandler serves the access history and statistics
type AdminHandler struct {
	base
	history HistoryService
	stats   StatsService
	stream  http.Handler
}

// NewAdminHandler creates a new admin handler. stream may be nil when live
// history is disabled.
func NewAdminHandler(history HistoryService, stats StatsService, stream http.Handler, log logger.Logger) *AdminHandler {
	return &AdminHandler{base: newBase(log), history: history, stats: stats, stream: stream}
}

// RegisterRoutes registers admin routes
func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/access-log", h.History).Methods("GET")
	router.HandleFunc("/api/v1/stats", h.Stats).Methods("GET")
	if h.stream != nil {
		router.Handle("/api/v1/access-log/stream", h.stream).Methods("GET")
	}
}

// History lists the newest audit entries; ?limit defaults to 100
func (h *AdminHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Access history retrieved successfully", entries)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Statistics computed successfully", stats)
}
