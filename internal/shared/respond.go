package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrorBody is the JSON error envelope returned by all handlers.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondJSON serializes v with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes a JSON error envelope.
func RespondError(w http.ResponseWriter, status int, msg string) {
	RespondJSON(w, status, ErrorBody{Error: msg})
}

// RespondDomainError maps shared sentinel errors to status codes, falling
// back to 500 for anything unrecognized.
func RespondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrDuplicate):
		RespondError(w, http.StatusConflict, err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// maxBodyBytes guards against oversized JSON payloads.
const maxBodyBytes = 1 << 20

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
