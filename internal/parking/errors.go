package parking

import "errors"

// Error kinds returned by the allocation core. Callers match them with
// errors.Is. Every failure is recoverable and leaves no partial state
// behind: a failed park never keeps a spot claimed, a failed reserve
// never registers an interval.
var (
	// ErrInvalidInput marks malformed arguments, detected before any
	// mutation takes place.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExhausted means no capacity remains for the request, an
	// expected outcome under load rather than an internal failure.
	ErrExhausted = errors.New("capacity exhausted")

	// ErrConflict marks a duplicate claim: a vehicle that already holds
	// an open ticket or an overlapping reservation.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an unknown ticket, reservation or spot id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyProcessed marks a second settlement attempt on a ticket.
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrInvalidState marks an operation against an entity in the wrong
	// lifecycle state.
	ErrInvalidState = errors.New("invalid state")
)
