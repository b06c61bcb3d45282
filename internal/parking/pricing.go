package parking

import (
	"fmt"
	"math"
	"time"
)

// FeeCalculator prices a parking interval for a vehicle class. It is
// pure: identical inputs always yield identical amounts, and calling it
// has no side effects.
type FeeCalculator interface {
	Fee(class VehicleClass, start, end time.Time) (float64, error)
	ReservationFee(class VehicleClass, start, end time.Time) (float64, error)
}

// Hourly rates per vehicle class.
const (
	motorcycleRate = 2.0
	carRate        = 5.0
	vanRate        = 7.5
	busRate        = 10.0
)

// DefaultReservationPremium is the multiplier applied to reservation
// fees for guaranteeing capacity ahead of time.
const DefaultReservationPremium = 1.2

// StandardPricing is the flat per-hour tariff: duration rounded up to
// whole hours, one hour minimum, rate scaled by vehicle class.
type StandardPricing struct {
	premium float64
}

// NewStandardPricing builds the tariff with the given reservation
// premium, which must exceed 1.
func NewStandardPricing(premium float64) (*StandardPricing, error) {
	if premium <= 1 {
		return nil, fmt.Errorf("%w: reservation premium must exceed 1, got %g", ErrInvalidInput, premium)
	}
	return &StandardPricing{premium: premium}, nil
}

func (p *StandardPricing) Fee(class VehicleClass, start, end time.Time) (float64, error) {
	if start.IsZero() || end.IsZero() {
		return 0, fmt.Errorf("%w: start and end times are required", ErrInvalidInput)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end time precedes start time", ErrInvalidInput)
	}
	rate, err := hourlyRate(class)
	if err != nil {
		return 0, err
	}
	hours := math.Ceil(end.Sub(start).Minutes() / 60)
	if hours < 1 {
		hours = 1
	}
	return rate * hours, nil
}

func (p *StandardPricing) ReservationFee(class VehicleClass, start, end time.Time) (float64, error) {
	base, err := p.Fee(class, start, end)
	if err != nil {
		return 0, err
	}
	return base * p.premium, nil
}

// Premium returns the reservation premium multiplier.
func (p *StandardPricing) Premium() float64 { return p.premium }

func hourlyRate(class VehicleClass) (float64, error) {
	switch class {
	case Motorcycle:
		return motorcycleRate, nil
	case Car:
		return carRate, nil
	case Van:
		return vanRate, nil
	case Bus:
		return busRate, nil
	default:
		return 0, fmt.Errorf("%w: unknown vehicle class %d", ErrInvalidInput, int(class))
	}
}
