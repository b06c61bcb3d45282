package parking

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// TicketLedger owns every ticket and enforces one open ticket per
// vehicle system-wide. Closing a ticket settles it exactly once:
// the fee is computed and the spot released through the registry.
type TicketLedger struct {
	registry *SpotRegistry
	pricing  FeeCalculator

	mu          sync.Mutex
	byID        map[string]*Ticket
	openByPlate map[string]string // license plate -> open ticket id

	seq atomic.Uint64
}

func NewTicketLedger(registry *SpotRegistry, pricing FeeCalculator) *TicketLedger {
	return &TicketLedger{
		registry:    registry,
		pricing:     pricing,
		byID:        make(map[string]*Ticket),
		openByPlate: make(map[string]string),
	}
}

func (l *TicketLedger) nextID() string {
	return fmt.Sprintf("TKT-%06d", l.seq.Add(1))
}

// Open creates a ticket for a vehicle that already holds spotID. The
// duplicate check and the insert form one critical section, so two
// racing calls for the same plate yield at most one success.
func (l *TicketLedger) Open(vehicle Vehicle, spotID string, entry time.Time) (Ticket, error) {
	if entry.IsZero() {
		return Ticket{}, fmt.Errorf("%w: entry time is required", ErrInvalidInput)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if open, ok := l.openByPlate[vehicle.Plate]; ok {
		return Ticket{}, fmt.Errorf("%w: vehicle %s already has an active parking ticket (%s)",
			ErrConflict, vehicle.Plate, open)
	}
	t := &Ticket{
		ID:        l.nextID(),
		Vehicle:   vehicle,
		SpotID:    spotID,
		EntryTime: entry,
	}
	l.byID[t.ID] = t
	l.openByPlate[vehicle.Plate] = t.ID
	return *t, nil
}

// Close settles a ticket: prices the stay, releases the spot and marks
// the ticket processed. Concurrent calls on the same id yield exactly
// one success; the rest fail with ErrAlreadyProcessed. Nothing is
// mutated on any failure path.
func (l *TicketLedger) Close(ticketID string, exit time.Time) (Ticket, float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.byID[ticketID]
	if !ok {
		return Ticket{}, 0, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
	}
	if t.Processed {
		return Ticket{}, 0, fmt.Errorf("%w: ticket %s", ErrAlreadyProcessed, ticketID)
	}
	fee, err := l.pricing.Fee(t.Vehicle.Class, t.EntryTime, exit)
	if err != nil {
		return Ticket{}, 0, err
	}
	if err := l.registry.Release(t.SpotID); err != nil {
		return Ticket{}, 0, fmt.Errorf("releasing spot %s for ticket %s: %w", t.SpotID, ticketID, err)
	}
	t.ExitTime = exit
	t.Processed = true
	delete(l.openByPlate, t.Vehicle.Plate)
	return *t, fee, nil
}

// Get returns a snapshot of any ticket by id.
func (l *TicketLedger) Get(ticketID string) (Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.byID[ticketID]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
	}
	return *t, nil
}

// FindByPlate returns the open ticket for a license plate.
func (l *TicketLedger) FindByPlate(plate string) (Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.openByPlate[plate]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: no active ticket for vehicle %s", ErrNotFound, plate)
	}
	return *l.byID[id], nil
}

// Active returns a snapshot of all open tickets ordered by id.
func (l *TicketLedger) Active() []Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Ticket, 0, len(l.openByPlate))
	for _, id := range l.openByPlate {
		out = append(out, *l.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveCount returns the number of open tickets.
func (l *TicketLedger) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.openByPlate)
}
