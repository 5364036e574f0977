package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"booking-platform/internal/usecase"
	"booking-platform/pkg/lock"
	"booking-platform/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// handleServiceError maps usecase errors onto HTTP responses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	warn := func(status string) {
		log.Warn(operation+" failed", zap.Error(err), zap.String("reason", status))
	}

	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrSignatureInvalid),
		errors.Is(err, usecase.ErrInvalidPayload):
		warn("bad_request")
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		warn("unauthorized")
		utils.ResponseUnauthorized(w, "Invalid email or password")

	case errors.Is(err, usecase.ErrInactiveUser):
		warn("forbidden")
		utils.ResponseForbidden(w, "Account is deactivated")

	case errors.Is(err, usecase.ErrTokenExpired):
		warn("gone")
		utils.ResponseGone(w, err.Error())

	case errors.Is(err, usecase.ErrNotFound), errors.Is(err, usecase.ErrTokenNotFound):
		warn("not_found")
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrNoAvailability),
		errors.Is(err, usecase.ErrTokenUsed),
		errors.Is(err, usecase.ErrAlreadySettled),
		errors.Is(err, usecase.ErrInvalidState),
		errors.Is(err, usecase.ErrConflict):
		warn("conflict")
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, lock.ErrNotAcquired):
		warn("busy")
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Booking system busy, try again", nil, nil)

	case errors.Is(err, usecase.ErrProvider):
		log.Error(operation+" failed at payment provider", zap.Error(err))
		utils.ResponseBadGateway(w, "Payment provider unavailable")

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
