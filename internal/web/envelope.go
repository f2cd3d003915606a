package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/evcraddock/domaindeck/internal/apperr"
)

// envelope wraps every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// apiJSON writes a successful JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	writeEnvelope(w, envelope{Success: true, Data: data}, code)
}

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	writeEnvelope(w, envelope{Success: false, Error: msg}, code)
}

func writeEnvelope(w http.ResponseWriter, env envelope, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		http.Error(w, `{"success":false,"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiErr writes err with the status its kind maps to. Unclassified errors
// are logged and reported generically.
func (s *Server) apiErr(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.HTTPStatus(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("handling request", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	apiError(w, apperr.PublicMessage(err), code)
}

// decodeJSON reads the request body into v. An empty body leaves v zero.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	return nil
}
