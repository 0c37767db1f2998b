package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/labtrack/labtrack/infrastructure/http/middleware"
	"github.com/labtrack/labtrack/infrastructure/http/response"
	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	apperr "github.com/labtrack/labtrack/pkg/error"
)

// base carries what every handler needs to answer a request
type base struct {
	log logger.Logger
}

func newBase(log logger.Logger) base {
	if log == nil {
		log = logger.NewNop()
	}
	return base{log: log}
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.failWith(w, r, err, nil)
}

func (b base) failWith(w http.ResponseWriter, r *http.Request, err error, data interface{}) {
	appErr := apperr.MapError(err)
	if appErr.Status >= http.StatusInternalServerError {
		b.log.Error(r.Context(), "request failed", err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}
	if data == nil {
		data = appErr.Details
	}
	response.Fail(w, appErr.Status, appErr.Code, appErr.Field, appErr.Message, data)
}

func actor(r *http.Request) int64 {
	return middleware.Actor(r.Context())
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.NewBadRequest("Invalid request body")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewBadRequest("Invalid id")
	}
	return id, nil
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperr.NewValidation(key, key+": must be a number")
	}
	return &n, nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return nil, apperr.NewValidation(key, key+": must be a date (YYYY-MM-DD)")
	}
	return &d, nil
}
