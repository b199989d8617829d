package tenant

import (
	"encoding/json"
	"errors"
	"net/http"
)

// MaintenanceError carries the operator-supplied maintenance message to
// the rejection response. It unwraps to ErrMaintenanceMode so callers can
// classify it with errors.Is.
type MaintenanceError struct {
	Message string
}

func (e *MaintenanceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrMaintenanceMode.Error()
}

func (e *MaintenanceError) Unwrap() error { return ErrMaintenanceMode }

// Rejection codes returned to callers. Stable and machine-readable; the
// human message may change, the code never does.
const (
	CodeTenantRequired    = "TENANT_REQUIRED"
	CodeTenantUnavailable = "TENANT_UNAVAILABLE"
	CodeTenantMaintenance = "TENANT_MAINTENANCE"
	CodeConnectionFailed  = "CONNECTION_FAILED"
	CodeInvalidIdentifier = "INVALID_IDENTIFIER"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DefaultErrorHandler writes the terminal JSON rejection for a request.
//
// Not-found, deactivated and subscription-lapsed stores all map to the
// same TENANT_UNAVAILABLE response so that store existence never leaks.
// Maintenance is the one policy rejection with 503 semantics, keeping it
// distinguishable from unavailable (404) for well-behaved clients.
// Internal error details never reach the response body.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var mErr *MaintenanceError

	switch {
	case errors.Is(err, ErrTenantRequired):
		writeError(w, http.StatusBadRequest, CodeTenantRequired, "no store identified in request")
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrSubscriptionLapsed):
		writeError(w, http.StatusNotFound, CodeTenantUnavailable, "this store is currently not available")
	case errors.As(err, &mErr):
		msg := mErr.Message
		if msg == "" {
			msg = "store is under maintenance"
		}
		writeError(w, http.StatusServiceUnavailable, CodeTenantMaintenance, msg)
	case errors.Is(err, ErrMaintenanceMode):
		writeError(w, http.StatusServiceUnavailable, CodeTenantMaintenance, "store is under maintenance")
	case errors.Is(err, ErrConnectionFailed):
		writeError(w, http.StatusServiceUnavailable, CodeConnectionFailed, "store is temporarily unavailable")
	case errors.Is(err, ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, CodeInvalidIdentifier, "invalid store identifier")
	case errors.Is(err, ErrNoTenantInContext):
		writeError(w, http.StatusBadRequest, CodeTenantRequired, "valid store context required for this operation")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}
