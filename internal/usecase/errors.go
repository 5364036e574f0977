package usecase

import (
	"errors"
	"fmt"

	"booking-platform/pkg/utils"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrNoAvailability     = errors.New("no boats available for these dates")
	ErrTokenNotFound      = errors.New("payment link not found")
	ErrTokenExpired       = errors.New("payment link expired")
	ErrTokenUsed          = errors.New("payment link already used")
	ErrAlreadySettled     = errors.New("booking already fully paid")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrSignatureInvalid   = errors.New("webhook signature invalid")
	ErrInvalidPayload     = errors.New("webhook payload invalid")
	ErrLedgerPending      = errors.New("payment ledger entry pending")
	ErrProvider           = errors.New("payment provider error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidState       = errors.New("invalid booking state")
	ErrConflict           = errors.New("conflict")
	ErrInactiveUser       = errors.New("user is inactive")
)

func validationError(errs map[string]string) error {
	return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
}

// IsTokenError reports whether err is one of the payment link conditions
// that make a token unusable.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenUsed) ||
		errors.Is(err, ErrAlreadySettled)
}
