package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleClass(t *testing.T) {
	tests := []struct {
		in      string
		want    VehicleClass
		wantErr bool
	}{
		{"motorcycle", Motorcycle, false},
		{"car", Car, false},
		{"van", Van, false},
		{"bus", Bus, false},
		{"CAR", Car, false},
		{"  bus  ", Bus, false},
		{"truck", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVehicleClass(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVehicleClassSizeOrdering(t *testing.T) {
	assert.Less(t, Motorcycle.Size(), Car.Size())
	assert.Less(t, Car.Size(), Van.Size())
	assert.Less(t, Van.Size(), Bus.Size())
}

func TestNewVehicle(t *testing.T) {
	v, err := NewVehicle("KA-01-1234", Car)
	require.NoError(t, err)
	assert.Equal(t, "KA-01-1234", v.Plate)
	assert.Equal(t, "car", v.Class.String())

	_, err = NewVehicle("", Car)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewVehicle("KA-01-1234", VehicleClass(7))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
