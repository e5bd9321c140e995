package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gagetrack/internal/apperr"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondError maps the apperr taxonomy onto HTTP statuses. Server errors keep
// the underlying message in the response; this is an internal tool and the
// detail is worth more than the secrecy.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConfiguration:
		status = http.StatusServiceUnavailable
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func urlID(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(n), nil
}
