package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// ErrorResponseBody is the shape of every error reply.
type ErrorResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UnauthorizedMessage is returned for every authentication failure, whatever
// the underlying cause.
const UnauthorizedMessage = "could not validate credentials"

type apiError struct {
	status  int
	code    string
	message string
}

func classify(err error) apiError {
	switch {
	case auth.IsUnauthenticated(err):
		return apiError{http.StatusUnauthorized, "UNAUTHORIZED", UnauthorizedMessage}
	case errors.Is(err, common.ErrInactiveAccount):
		return apiError{http.StatusBadRequest, "INACTIVE_ACCOUNT", "inactive user"}
	case errors.Is(err, common.ErrDuplicateEmail):
		return apiError{http.StatusBadRequest, "DUPLICATE_EMAIL", "email already registered"}
	case errors.Is(err, common.ErrDuplicateUsername):
		return apiError{http.StatusBadRequest, "DUPLICATE_USERNAME", "username already registered"}
	case errors.Is(err, common.ErrValidation):
		return apiError{http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error()}
	case errors.Is(err, common.ErrorNotFound):
		return apiError{http.StatusNotFound, "NOT_FOUND", "not found"}
	default:
		return apiError{http.StatusInternalServerError, "INTERNAL_ERROR", "internal error"}
	}
}

func writeError(w http.ResponseWriter, err error) {
	e := classify(err)
	if e.status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, e.status, ErrorResponseBody{Code: e.code, Message: e.message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
