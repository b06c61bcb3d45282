package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardPricingFee(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	p, err := NewStandardPricing(DefaultReservationPremium)
	require.NoError(t, err)

	tests := []struct {
		name     string
		class    VehicleClass
		duration time.Duration
		want     float64
	}{
		{"motorcycle one hour", Motorcycle, time.Hour, 2.0},
		{"car one hour", Car, time.Hour, 5.0},
		{"van one hour", Van, time.Hour, 7.5},
		{"bus one hour", Bus, time.Hour, 10.0},
		{"ten minutes bills a full hour", Car, 10 * time.Minute, 5.0},
		{"zero duration bills a full hour", Car, 0, 5.0},
		{"sixty one minutes bills two hours", Car, 61 * time.Minute, 10.0},
		{"exactly two hours", Car, 2 * time.Hour, 10.0},
		{"bus three and a half hours", Bus, 3*time.Hour + 30*time.Minute, 40.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Fee(tt.class, base, base.Add(tt.duration))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardPricingFeeErrors(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	p, err := NewStandardPricing(DefaultReservationPremium)
	require.NoError(t, err)

	t.Run("exit before entry", func(t *testing.T) {
		_, err := p.Fee(Car, base, base.Add(-time.Minute))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero times", func(t *testing.T) {
		_, err := p.Fee(Car, time.Time{}, base)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := p.Fee(VehicleClass(99), base, base.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestStandardPricingReservationFee(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	p, err := NewStandardPricing(DefaultReservationPremium)
	require.NoError(t, err)

	// 3 hours of car at 5.0/h, times the 1.2 premium.
	got, err := p.ReservationFee(Car, base, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 18.0, got, 1e-9)

	drop, err := p.Fee(Car, base, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Greater(t, got, drop, "reservation must cost more than the same drop-in stay")
}

func TestNewStandardPricingRejectsLowPremium(t *testing.T) {
	for _, premium := range []float64{1.0, 0.5, 0, -2} {
		_, err := NewStandardPricing(premium)
		assert.ErrorIs(t, err, ErrInvalidInput, "premium %g", premium)
	}
}

func TestStandardPricingIsPure(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	p, err := NewStandardPricing(1.5)
	require.NoError(t, err)

	first, err := p.Fee(Van, base, base.Add(90*time.Minute))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.Fee(Van, base, base.Add(90*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
