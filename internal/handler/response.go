package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-finance-tracker/internal/model"
	"go-finance-tracker/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps an error to the {code, message} envelope. Anything
// that is not an APIError or a known sentinel becomes a generic 500;
// the detail stays in the server log.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "unexpected server error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusUnauthorized
		message = "user no longer exists"
	case errors.Is(err, model.ErrRecordNotFound):
		status = http.StatusNotFound
		message = "record not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusBadRequest
		message = "username already exists"
	case errors.Is(err, model.ErrUniqueViolation):
		status = http.StatusBadRequest
		message = "already exists"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Code: status, Message: message})
}
