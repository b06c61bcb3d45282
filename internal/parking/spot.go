package parking

// Spot is one physical parking space, the unit of allocation. Occupancy
// state is owned by the SpotRegistry and only mutated under its lock;
// everything handed out of the registry is a value copy. A spot is
// occupied exactly when it holds a vehicle reference.
type Spot struct {
	ID       string
	Occupied bool
	Vehicle  *Vehicle
}
