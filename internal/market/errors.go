package market

import "errors"

// Error kinds surfaced by market operations. Callers match with errors.Is;
// the HTTP layer maps each kind to a status code.
var (
	ErrNotFound          = errors.New("not found")
	ErrNotOwner          = errors.New("not owner")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAlreadyExists     = errors.New("already exists")

	// ErrInvalidFreezeState and ErrInvalidReservation signal a bookkeeping
	// bug: an unfreeze/unreserve exceeding what is held. Correct callers
	// never trigger them.
	ErrInvalidFreezeState = errors.New("invalid freeze state")
	ErrInvalidReservation = errors.New("invalid reservation")
)
