package domain

import "time"

// Driver is a field agent that carries banners on their vehicle.
type Driver struct {
	ID           string
	VehicleClass VehicleClass
	// Earnings is the last computed cumulative earnings. It only grows.
	Earnings  int64
	CreatedAt time.Time
}
