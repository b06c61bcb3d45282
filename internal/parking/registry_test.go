package parking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotRegistryRegister(t *testing.T) {
	r := NewSpotRegistry()

	require.NoError(t, r.Register("A-1"))
	require.NoError(t, r.Register("A-2"))
	assert.Equal(t, 2, r.Total())

	t.Run("duplicate id", func(t *testing.T) {
		err := r.Register("A-1")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("empty id", func(t *testing.T) {
		err := r.Register("  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSpotRegistryClaimRelease(t *testing.T) {
	r := NewSpotRegistry()
	require.NoError(t, r.Register("A-1"))
	vehicle, err := NewVehicle("KA-01-1234", Car)
	require.NoError(t, err)

	spot, err := r.ClaimAny(vehicle)
	require.NoError(t, err)
	assert.Equal(t, "A-1", spot.ID)
	assert.True(t, spot.Occupied)
	require.NotNil(t, spot.Vehicle)
	assert.Equal(t, "KA-01-1234", spot.Vehicle.Plate)

	total, occupied, available := r.Counts()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, occupied)
	assert.Equal(t, 0, available)

	// Pool is full now.
	_, err = r.ClaimAny(vehicle)
	assert.ErrorIs(t, err, ErrExhausted)

	require.NoError(t, r.Release("A-1"))
	_, occupied, available = r.Counts()
	assert.Equal(t, 0, occupied)
	assert.Equal(t, 1, available)

	t.Run("release a free spot", func(t *testing.T) {
		err := r.Release("A-1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("release unknown spot", func(t *testing.T) {
		err := r.Release("Z-99")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSpotRegistrySnapshotIsCopy(t *testing.T) {
	r := NewSpotRegistry()
	require.NoError(t, r.Register("A-1"))

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Occupied = true

	_, occupied, _ := r.Counts()
	assert.Equal(t, 0, occupied, "mutating a snapshot must not touch the pool")
}

func TestSpotRegistryConcurrentClaims(t *testing.T) {
	const spots = 5
	const claimers = 50

	r := NewSpotRegistry()
	for i := 1; i <= spots; i++ {
		require.NoError(t, r.Register(fmt.Sprintf("A-%d", i)))
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make(chan Spot, claimers)
	failures := make(chan error, claimers)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			v := Vehicle{Plate: fmt.Sprintf("KA-01-%04d", n), Class: Car}
			spot, err := r.ClaimAny(v)
			if err != nil {
				failures <- err
				return
			}
			results <- spot
		}(i)
	}

	close(start)
	wg.Wait()
	close(results)
	close(failures)

	claimed := make(map[string]bool)
	for spot := range results {
		assert.False(t, claimed[spot.ID], "spot %s claimed twice", spot.ID)
		claimed[spot.ID] = true
	}
	assert.Len(t, claimed, spots, "exactly one claim per spot must succeed")

	for err := range failures {
		assert.ErrorIs(t, err, ErrExhausted)
	}

	_, occupied, available := r.Counts()
	assert.Equal(t, spots, occupied)
	assert.Equal(t, 0, available)
}
