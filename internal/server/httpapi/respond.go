package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sigmax/internal/common"
)

// maxBodyBytes bounds request bodies; identity scans are the largest.
const maxBodyBytes = 8 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", common.ErrorIncorrectArgument, err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrDuplicateHandle), errors.Is(err, common.ErrAlreadyMember),
		errors.Is(err, common.ErrDuplicateMessage):
		return http.StatusConflict
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrChannelNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrSelfLink), errors.Is(err, common.ErrInvalidSelfRemoval),
		errors.Is(err, common.ErrorIncorrectArgument), errors.Is(err, common.ErrUnknownCredential):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrBlocked), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error. Internal errors are logged and hidden.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}
