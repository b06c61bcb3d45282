package parking

import (
	"fmt"
	"strings"
	"sync"
)

// SpotRegistry owns the fixed pool of spots and their occupancy. A
// single mutex guards the whole pool; the find-and-mark step of ClaimAny
// is one critical section, so two callers can never walk away with the
// same spot.
type SpotRegistry struct {
	mu    sync.Mutex
	spots map[string]*Spot
	order []*Spot // registration order, scanned on claim
}

func NewSpotRegistry() *SpotRegistry {
	return &SpotRegistry{spots: make(map[string]*Spot)}
}

// Register adds a spot to the pool. Spot ids are unique.
func (r *SpotRegistry) Register(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: spot id cannot be empty", ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.spots[id]; ok {
		return fmt.Errorf("%w: spot %s already registered", ErrInvalidInput, id)
	}
	s := &Spot{ID: id}
	r.spots[id] = s
	r.order = append(r.order, s)
	return nil
}

// ClaimAny marks one free spot occupied by the vehicle and returns a
// copy of it. ErrExhausted means the pool is full, an expected outcome
// under load rather than a failure.
func (r *SpotRegistry) ClaimAny(vehicle Vehicle) (Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.order {
		if !s.Occupied {
			v := vehicle
			s.Occupied = true
			s.Vehicle = &v
			return *s, nil
		}
	}
	return Spot{}, fmt.Errorf("%w: no available parking spots", ErrExhausted)
}

// Release frees a claimed spot and clears its vehicle reference.
// Releasing a spot that is already free is a caller error.
func (r *SpotRegistry) Release(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.spots[id]
	if !ok {
		return fmt.Errorf("%w: spot %s", ErrNotFound, id)
	}
	if !s.Occupied {
		return fmt.Errorf("%w: spot %s is not occupied", ErrInvalidState, id)
	}
	s.Occupied = false
	s.Vehicle = nil
	return nil
}

// Counts reports a point-in-time occupancy snapshot.
func (r *SpotRegistry) Counts() (total, occupied, available int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total = len(r.order)
	for _, s := range r.order {
		if s.Occupied {
			occupied++
		}
	}
	return total, occupied, total - occupied
}

// Total returns the number of registered spots.
func (r *SpotRegistry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Snapshot returns copies of all spots in registration order.
func (r *SpotRegistry) Snapshot() []Spot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Spot, len(r.order))
	for i, s := range r.order {
		out[i] = *s
	}
	return out
}
