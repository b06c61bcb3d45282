package parking

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, spots int) *AllocationEngine {
	t.Helper()
	pricing, err := NewStandardPricing(DefaultReservationPremium)
	require.NoError(t, err)
	engine := NewAllocationEngine(pricing)
	for i := 1; i <= spots; i++ {
		require.NoError(t, engine.RegisterSpot(fmt.Sprintf("A-%d", i)))
	}
	return engine
}

func TestEngineStatusAggregation(t *testing.T) {
	engine := newTestEngine(t, 3)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	_, err := engine.Park(Vehicle{Plate: "KA-01-0001", Class: Car}, now)
	require.NoError(t, err)
	_, err = engine.Park(Vehicle{Plate: "KA-01-0002", Class: Motorcycle}, now)
	require.NoError(t, err)

	_, err = engine.Reserve("user-1", Vehicle{Plate: "KA-01-0003", Class: Van},
		now.Add(24*time.Hour), now.Add(26*time.Hour))
	require.NoError(t, err)

	st := engine.Status()
	assert.Equal(t, 3, st.TotalSpots)
	assert.Equal(t, 2, st.OccupiedSpots)
	assert.Equal(t, 1, st.AvailableSpots)
	assert.Equal(t, 2, st.ActiveTickets)
	assert.Equal(t, 1, st.ActiveReservations)

	tickets := engine.ActiveTickets()
	require.Len(t, tickets, 2)
	assert.Equal(t, "TKT-000001", tickets[0].ID)
	assert.Equal(t, "TKT-000002", tickets[1].ID)

	reservations := engine.Reservations()
	require.Len(t, reservations, 1)
	assert.Equal(t, StatusConfirmed, reservations[0].Status)
}

func TestEngineParkRollsBackOnConflict(t *testing.T) {
	engine := newTestEngine(t, 2)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	vehicle := Vehicle{Plate: "KA-01-1234", Class: Car}

	ticket, err := engine.Park(vehicle, now)
	require.NoError(t, err)

	_, err = engine.Park(vehicle, now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrConflict)

	st := engine.Status()
	assert.Equal(t, 1, st.OccupiedSpots, "a refused park must release the claimed spot")
	assert.Equal(t, 1, st.AvailableSpots)
	assert.Equal(t, 1, st.ActiveTickets)

	found, err := engine.FindVehicle(vehicle.Plate)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)
}

func TestEngineParkValidation(t *testing.T) {
	engine := newTestEngine(t, 1)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	_, err := engine.Park(Vehicle{Plate: "", Class: Car}, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = engine.Park(Vehicle{Plate: "KA-01-1234", Class: VehicleClass(0)}, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = engine.Park(Vehicle{Plate: "KA-01-1234", Class: Car}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	st := engine.Status()
	assert.Equal(t, 0, st.OccupiedSpots)
}

func TestEngineParkExhausted(t *testing.T) {
	engine := newTestEngine(t, 1)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	_, err := engine.Park(Vehicle{Plate: "KA-01-0001", Class: Car}, now)
	require.NoError(t, err)

	_, err = engine.Park(Vehicle{Plate: "KA-01-0002", Class: Car}, now)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "no available parking spots")
}

func TestEngineExitIdempotence(t *testing.T) {
	engine := newTestEngine(t, 1)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	ticket, err := engine.Park(Vehicle{Plate: "KA-01-1234", Class: Bus}, now)
	require.NoError(t, err)

	fee, err := engine.Exit(ticket.ID, now.Add(2*time.Hour+10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 30.0, fee)

	st := engine.Status()
	assert.Equal(t, 0, st.OccupiedSpots)
	assert.Equal(t, 1, st.AvailableSpots)
	assert.Equal(t, 0, st.ActiveTickets)

	_, err = engine.Exit(ticket.ID, now.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, st, engine.Status(), "a rejected exit changes nothing")
}

func TestEngineReservationRoundTrip(t *testing.T) {
	engine := newTestEngine(t, 2)
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	vehicle := Vehicle{Plate: "KA-01-1234", Class: Car}

	res, err := engine.Reserve("user-1", vehicle, t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 12.0, res.PaidAmount, 1e-9)

	active, err := engine.ActivateReservation(res.ID, t0)
	require.NoError(t, err)
	assert.NotEmpty(t, active.SpotID)
	assert.Equal(t, 1, engine.Status().OccupiedSpots)

	done, err := engine.CompleteReservation(res.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, res.PaidAmount, done.PaidAmount)
	assert.Equal(t, 0, engine.Status().OccupiedSpots)

	got, err := engine.GetReservation(res.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestEngineExpireReservations(t *testing.T) {
	engine := newTestEngine(t, 1)
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	res, err := engine.Reserve("user-1", Vehicle{Plate: "KA-01-1234", Class: Car}, t0, t0.Add(time.Hour))
	require.NoError(t, err)

	expired := engine.ExpireReservations(t0.Add(2 * time.Hour))
	require.Len(t, expired, 1)
	assert.Equal(t, res.ID, expired[0].ID)
	assert.Equal(t, 0, engine.Status().ActiveReservations)
}

func TestEngineConcurrentParks(t *testing.T) {
	const spots = 10
	const drivers = 100

	engine := newTestEngine(t, spots)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	start := make(chan struct{})
	tickets := make(chan Ticket, drivers)
	failures := make(chan error, drivers)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			v := Vehicle{Plate: fmt.Sprintf("KA-01-%04d", n), Class: Car}
			ticket, err := engine.Park(v, now)
			if err != nil {
				failures <- err
				return
			}
			tickets <- ticket
		}(i)
	}

	close(start)
	wg.Wait()
	close(tickets)
	close(failures)

	spotsSeen := make(map[string]bool)
	parked := 0
	for ticket := range tickets {
		assert.False(t, spotsSeen[ticket.SpotID], "spot %s bound to two tickets", ticket.SpotID)
		spotsSeen[ticket.SpotID] = true
		parked++
	}
	assert.Equal(t, spots, parked)

	for err := range failures {
		assert.ErrorIs(t, err, ErrExhausted)
	}

	st := engine.Status()
	assert.Equal(t, spots, st.OccupiedSpots)
	assert.Equal(t, 0, st.AvailableSpots)
	assert.Equal(t, spots, st.ActiveTickets)
}
