package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kmehta-dev/drivehub/internal/models"
)

type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse maps a domain error onto its HTTP status and writes the
// standard failure envelope.
func ErrorResponse(w http.ResponseWriter, err error) {
	JSONResponse(w, statusFor(err), Payload{
		Success: false,
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrFolderNotFound),
		errors.Is(err, models.ErrFileNotFound),
		errors.Is(err, models.ErrShareNotFound),
		errors.Is(err, models.ErrLinkNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrPermissionDenied),
		errors.Is(err, models.ErrLinkPassword):
		return http.StatusForbidden

	case errors.Is(err, models.ErrLinkExpired):
		return http.StatusGone

	case errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, models.ErrDuplicateShare),
		errors.Is(err, models.ErrDuplicateUser),
		errors.Is(err, models.ErrFolderCycle):
		return http.StatusConflict

	case errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidPermission),
		errors.Is(err, models.ErrExclusiveTarget),
		errors.Is(err, models.ErrNotOwner):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
