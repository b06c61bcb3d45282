package parking

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ReservationBook owns all reservations and the interval-capacity
// invariant: at no instant may confirmed or active reservations overlap
// more than the registered spot count. The admission check and the
// insert happen under one lock, so two reservations that would jointly
// overbook a window can never both be admitted.
//
// Capacity is held purely as an interval count; a physical spot is
// claimed from the registry only at activation. Open drop-in tickets do
// not count against reservation capacity, which means activation can
// still fail with ErrExhausted when drop-ins have filled the lot.
type ReservationBook struct {
	registry *SpotRegistry
	pricing  FeeCalculator

	mu      sync.Mutex
	byID    map[string]*Reservation
	ordered []*Reservation // sorted by start time

	seq atomic.Uint64
}

func NewReservationBook(registry *SpotRegistry, pricing FeeCalculator) *ReservationBook {
	return &ReservationBook{
		registry: registry,
		pricing:  pricing,
		byID:     make(map[string]*Reservation),
	}
}

func (b *ReservationBook) nextID() string {
	return fmt.Sprintf("RSV-%06d", b.seq.Add(1))
}

// Reserve admits a reservation for [start, end) and prices it with the
// reservation premium. It fails with ErrConflict when the vehicle
// already holds a capacity-counting reservation overlapping the window,
// and with ErrExhausted when admission would overbook any instant of it.
func (b *ReservationBook) Reserve(userID string, vehicle Vehicle, start, end time.Time) (Reservation, error) {
	if strings.TrimSpace(userID) == "" {
		return Reservation{}, fmt.Errorf("%w: user id cannot be empty", ErrInvalidInput)
	}
	if start.IsZero() || end.IsZero() {
		return Reservation{}, fmt.Errorf("%w: start and end times are required", ErrInvalidInput)
	}
	if !start.Before(end) {
		return Reservation{}, fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	}

	// The calculator is pure, so pricing happens outside the lock.
	paid, err := b.pricing.ReservationFee(vehicle.Class, start, end)
	if err != nil {
		return Reservation{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.ordered {
		if !r.Start.Before(end) {
			break // sorted by start: nothing past here can overlap
		}
		if !r.Status.holdsCapacity() {
			continue
		}
		if r.Vehicle.Plate == vehicle.Plate && overlaps(r.Start, r.End, start, end) {
			return Reservation{}, fmt.Errorf("%w: vehicle %s already has a reservation overlapping the requested window",
				ErrConflict, vehicle.Plate)
		}
	}
	if !b.fitsLocked(start, end) {
		return Reservation{}, fmt.Errorf("%w: no spots available for requested window", ErrExhausted)
	}

	res := &Reservation{
		ID:         b.nextID(),
		UserID:     userID,
		Vehicle:    vehicle,
		Start:      start,
		End:        end,
		Status:     StatusConfirmed,
		PaidAmount: paid,
	}
	b.insertLocked(res)
	b.byID[res.ID] = res
	return *res, nil
}

type sweepEvent struct {
	at    time.Time
	delta int
}

// fitsLocked checks the pointwise capacity rule for a candidate window:
// the maximum number of capacity-counting reservations overlapping any
// instant of [start, end), plus the candidate itself, must not exceed
// the registered spot count. Implemented as an event sweep over the
// overlapping set, clipped to the window.
func (b *ReservationBook) fitsLocked(start, end time.Time) bool {
	capacity := b.registry.Total()
	if capacity == 0 {
		return false
	}
	var events []sweepEvent
	for _, r := range b.ordered {
		if !r.Start.Before(end) {
			break
		}
		if !r.Status.holdsCapacity() || !overlaps(r.Start, r.End, start, end) {
			continue
		}
		s, e := r.Start, r.End
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		events = append(events, sweepEvent{at: s, delta: 1}, sweepEvent{at: e, delta: -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			// Half-open intervals: an end at the same instant frees the
			// slot before the start takes it.
			return events[i].delta < events[j].delta
		}
		return events[i].at.Before(events[j].at)
	})
	overlap, peak := 0, 0
	for _, ev := range events {
		overlap += ev.delta
		if overlap > peak {
			peak = overlap
		}
	}
	return peak+1 <= capacity
}

func (b *ReservationBook) insertLocked(res *Reservation) {
	i := sort.Search(len(b.ordered), func(i int) bool {
		return b.ordered[i].Start.After(res.Start)
	})
	b.ordered = append(b.ordered, nil)
	copy(b.ordered[i+1:], b.ordered[i:])
	b.ordered[i] = res
}

// Activate transitions a confirmed reservation to active once its window
// has begun, binding a physical spot from the registry. Drop-ins may
// have filled the lot in the meantime, in which case it fails with
// ErrExhausted and the reservation stays confirmed.
func (b *ReservationBook) Activate(id string, at time.Time) (Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.byID[id]
	if !ok {
		return Reservation{}, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	if res.Status != StatusConfirmed {
		return Reservation{}, fmt.Errorf("%w: reservation %s is %s, expected confirmed", ErrInvalidState, id, res.Status)
	}
	if at.Before(res.Start) {
		return Reservation{}, fmt.Errorf("%w: reservation %s window starts at %s", ErrInvalidState, id, res.Start.Format(time.RFC3339))
	}
	spot, err := b.registry.ClaimAny(res.Vehicle)
	if err != nil {
		return Reservation{}, err
	}
	res.Status = StatusActive
	res.SpotID = spot.ID
	return *res, nil
}

// Complete transitions an active reservation to completed and releases
// its bound spot.
func (b *ReservationBook) Complete(id string, at time.Time) (Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.byID[id]
	if !ok {
		return Reservation{}, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	if res.Status != StatusActive {
		return Reservation{}, fmt.Errorf("%w: reservation %s is %s, expected active", ErrInvalidState, id, res.Status)
	}
	if err := b.registry.Release(res.SpotID); err != nil {
		return Reservation{}, fmt.Errorf("releasing spot %s for reservation %s: %w", res.SpotID, id, err)
	}
	res.Status = StatusCompleted
	return *res, nil
}

// Cancel withdraws a confirmed reservation. Only allowed before the
// reserved window starts.
func (b *ReservationBook) Cancel(id string, at time.Time) (Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.byID[id]
	if !ok {
		return Reservation{}, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	if res.Status != StatusConfirmed {
		return Reservation{}, fmt.Errorf("%w: reservation %s is %s, expected confirmed", ErrInvalidState, id, res.Status)
	}
	if !at.Before(res.Start) {
		return Reservation{}, fmt.Errorf("%w: reservation %s window already started", ErrInvalidState, id)
	}
	res.Status = StatusCancelled
	return *res, nil
}

// ExpireDue expires every confirmed reservation whose window fully
// passed without activation and returns snapshots of them.
func (b *ReservationBook) ExpireDue(now time.Time) []Reservation {
	b.mu.Lock()
	defer b.mu.Unlock()
	var expired []Reservation
	for _, r := range b.ordered {
		if r.Status == StatusConfirmed && now.After(r.End) {
			r.Status = StatusExpired
			expired = append(expired, *r)
		}
	}
	return expired
}

// Get returns a reservation snapshot by id.
func (b *ReservationBook) Get(id string) (Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.byID[id]
	if !ok {
		return Reservation{}, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	return *res, nil
}

// ActiveCount counts reservations currently holding capacity.
func (b *ReservationBook) ActiveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.ordered {
		if r.Status.holdsCapacity() {
			n++
		}
	}
	return n
}

// All returns a snapshot of every reservation ordered by start time.
func (b *ReservationBook) All() []Reservation {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Reservation, len(b.ordered))
	for i, r := range b.ordered {
		out[i] = *r
	}
	return out
}
