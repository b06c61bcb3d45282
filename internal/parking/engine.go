package parking

import (
	"fmt"
	"time"
)

// AllocationEngine composes the spot registry, the ticket ledger and the
// reservation book behind a single entry point. Current time is always
// an explicit argument on temporal operations so behavior stays
// deterministic under test.
type AllocationEngine struct {
	registry *SpotRegistry
	ledger   *TicketLedger
	book     *ReservationBook
}

// Status is a read-only aggregate snapshot. Each field is individually
// consistent; the snapshot as a whole is not atomic across components.
type Status struct {
	TotalSpots         int
	OccupiedSpots      int
	AvailableSpots     int
	ActiveTickets      int
	ActiveReservations int
}

func NewAllocationEngine(pricing FeeCalculator) *AllocationEngine {
	registry := NewSpotRegistry()
	return &AllocationEngine{
		registry: registry,
		ledger:   NewTicketLedger(registry, pricing),
		book:     NewReservationBook(registry, pricing),
	}
}

// RegisterSpot adds a physical spot to the pool.
func (e *AllocationEngine) RegisterSpot(id string) error {
	return e.registry.Register(id)
}

// Park claims a free spot and opens a ticket for the vehicle. The two
// steps form a compensating saga: when the ticket is refused (duplicate
// vehicle), the claimed spot is released again before the conflict
// propagates, so a failed park never leaks a claim.
func (e *AllocationEngine) Park(vehicle Vehicle, now time.Time) (Ticket, error) {
	if err := vehicle.validate(); err != nil {
		return Ticket{}, err
	}
	if now.IsZero() {
		return Ticket{}, fmt.Errorf("%w: current time is required", ErrInvalidInput)
	}
	spot, err := e.registry.ClaimAny(vehicle)
	if err != nil {
		return Ticket{}, err
	}
	ticket, err := e.ledger.Open(vehicle, spot.ID, now)
	if err != nil {
		if relErr := e.registry.Release(spot.ID); relErr != nil {
			return Ticket{}, fmt.Errorf("rolling back claim of spot %s: %v (after: %w)", spot.ID, relErr, err)
		}
		return Ticket{}, err
	}
	return ticket, nil
}

// Exit closes a ticket and returns the charged fee.
func (e *AllocationEngine) Exit(ticketID string, now time.Time) (float64, error) {
	_, fee, err := e.ledger.Close(ticketID, now)
	return fee, err
}

// Reserve admits a future time-bounded claim on capacity.
func (e *AllocationEngine) Reserve(userID string, vehicle Vehicle, start, end time.Time) (Reservation, error) {
	if err := vehicle.validate(); err != nil {
		return Reservation{}, err
	}
	return e.book.Reserve(userID, vehicle, start, end)
}

// ActivateReservation begins a reservation's parking session, binding a
// physical spot.
func (e *AllocationEngine) ActivateReservation(id string, now time.Time) (Reservation, error) {
	return e.book.Activate(id, now)
}

// CompleteReservation ends an active reservation and frees its spot.
func (e *AllocationEngine) CompleteReservation(id string, now time.Time) (Reservation, error) {
	return e.book.Complete(id, now)
}

// CancelReservation withdraws a confirmed reservation before its window.
func (e *AllocationEngine) CancelReservation(id string, now time.Time) (Reservation, error) {
	return e.book.Cancel(id, now)
}

// ExpireReservations expires confirmed reservations whose window passed.
func (e *AllocationEngine) ExpireReservations(now time.Time) []Reservation {
	return e.book.ExpireDue(now)
}

// Status aggregates occupancy and activity counters.
func (e *AllocationEngine) Status() Status {
	total, occupied, available := e.registry.Counts()
	return Status{
		TotalSpots:         total,
		OccupiedSpots:      occupied,
		AvailableSpots:     available,
		ActiveTickets:      e.ledger.ActiveCount(),
		ActiveReservations: e.book.ActiveCount(),
	}
}

// ActiveTickets returns a snapshot of all open tickets.
func (e *AllocationEngine) ActiveTickets() []Ticket {
	return e.ledger.Active()
}

// Reservations returns a snapshot of every reservation.
func (e *AllocationEngine) Reservations() []Reservation {
	return e.book.All()
}

// GetReservation returns one reservation by id.
func (e *AllocationEngine) GetReservation(id string) (Reservation, error) {
	return e.book.Get(id)
}

// FindVehicle returns the open ticket for a license plate.
func (e *AllocationEngine) FindVehicle(plate string) (Ticket, error) {
	return e.ledger.FindByPlate(plate)
}

// Spots returns copies of all registered spots.
func (e *AllocationEngine) Spots() []Spot {
	return e.registry.Snapshot()
}
