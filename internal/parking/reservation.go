package parking

import "time"

// ReservationStatus is the lifecycle state of a reservation. Transitions
// are monotonic: pending -> confirmed -> active -> completed, with
// confirmed -> cancelled and confirmed -> expired as the only exits.
// Completed, cancelled and expired are terminal.
type ReservationStatus int

const (
	StatusPending ReservationStatus = iota
	StatusConfirmed
	StatusActive
	StatusCompleted
	StatusCancelled
	StatusExpired
)

func (s ReservationStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// holdsCapacity reports whether the reservation counts against interval
// capacity.
func (s ReservationStatus) holdsCapacity() bool {
	return s == StatusConfirmed || s == StatusActive
}

// Reservation is a time-bounded claim on capacity, independent of which
// physical spot is eventually bound. The paid amount is fixed at
// admission and never recomputed. The book owns the mutable record;
// callers receive value copies.
type Reservation struct {
	ID         string
	UserID     string
	Vehicle    Vehicle
	Start      time.Time
	End        time.Time
	SpotID     string // bound at activation, empty before
	Status     ReservationStatus
	PaidAmount float64
}

// overlaps applies the half-open interval rule: [s1,e1) and [s2,e2)
// share an instant iff s1 < e2 && s2 < e1. Touching endpoints do not
// overlap.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
