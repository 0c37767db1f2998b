package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/usecase"
)

// UserHandler handles HTTP requests for the user registry
type UserHandler struct {
	base
	users     UserService
	integrity IntegrityService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserService, integrity IntegrityService, log logger.Logger) *UserHandler {
	return &UserHandler{base: newBase(log), users: users, integrity: integrity}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/users", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/users", h.List).Methods("GET")
	router.HandleFunc("/api/v1/users/verify", h.Verify).Methods("POST")
	router.HandleFunc("/api/v1/users/{id:[0-9]+}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/users/{id:[0-9]+}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/users/{id:[0-9]+}", h.Delete).Methods("DELETE")
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.UserRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), actor(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, "User created successfully", user)
}

// Update handles user edits; an empty password keeps the current one
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req usecase.UserRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor(r), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.UserFilter
	if v := queryString(r, "role"); v != nil {
		role := domain.UserRole(*v)
		filter.Role = &role
	}
	if v := queryString(r, "status"); v != nil {
		status := domain.UserStatus(*v)
		filter.Status = &status
	}

	users, err := h.users.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Users retrieved successfully", users)
}

// Delete handles user removal; the primordial administrator answers 403
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.integrity.DeleteUser(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}

// Verify checks a login and password pair
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.VerifyCredentials(r.Context(), req.Login, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, "Credentials verified", user)
}
