package parking

import (
	"fmt"
	"strings"
)

// VehicleClass partitions vehicles into size and rate tiers.
type VehicleClass int

const (
	Motorcycle VehicleClass = iota + 1
	Car
	Van
	Bus
)

// Size returns the relative footprint of the class.
func (c VehicleClass) Size() int { return int(c) }

func (c VehicleClass) String() string {
	switch c {
	case Motorcycle:
		return "motorcycle"
	case Car:
		return "car"
	case Van:
		return "van"
	case Bus:
		return "bus"
	default:
		return fmt.Sprintf("vehicleclass(%d)", int(c))
	}
}

func (c VehicleClass) valid() bool {
	return c >= Motorcycle && c <= Bus
}

// ParseVehicleClass maps a wire name like "car" to its VehicleClass.
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "motorcycle":
		return Motorcycle, nil
	case "car":
		return Car, nil
	case "van":
		return Van, nil
	case "bus":
		return Bus, nil
	default:
		return 0, fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidInput, s)
	}
}

// Vehicle is an immutable value identified by its license plate.
type Vehicle struct {
	Plate string
	Class VehicleClass
}

// NewVehicle validates and builds a vehicle value.
func NewVehicle(plate string, class VehicleClass) (Vehicle, error) {
	v := Vehicle{Plate: plate, Class: class}
	if err := v.validate(); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (v Vehicle) validate() error {
	if strings.TrimSpace(v.Plate) == "" {
		return fmt.Errorf("%w: license plate cannot be empty", ErrInvalidInput)
	}
	if !v.Class.valid() {
		return fmt.Errorf("%w: unknown vehicle class %d", ErrInvalidInput, int(v.Class))
	}
	return nil
}
