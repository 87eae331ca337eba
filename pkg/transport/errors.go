package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/auth"
	"github.com/messagely/messagely/pkg/storage"
	"github.com/messagely/messagely/pkg/users"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP
// status code.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeInvalidCredentials, api.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an APIError response, deriving the HTTP status
// code from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}

// WriteError maps a domain error to its response shape and writes it.
// Authorization denials and bad logins keep their uniform messages; any
// unrecognized error becomes a generic 500 with the detail logged, not
// leaked.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		// Validation errors carry their own type and param.
	case errors.Is(err, auth.ErrUnauthorized):
		apiErr = api.NewUnauthorizedError()
	case errors.Is(err, users.ErrInvalidCredentials):
		apiErr = api.NewInvalidCredentialsError()
	case errors.Is(err, storage.ErrNotFound):
		apiErr = api.NewNotFoundError("not found")
	case errors.Is(err, storage.ErrDuplicate):
		apiErr = api.NewConflictError("username is already taken")
	default:
		slog.Error("request failed", "error", err)
		apiErr = api.NewServerError("internal server error")
	}
	WriteAPIError(w, apiErr)
}
