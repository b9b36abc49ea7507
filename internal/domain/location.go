package domain

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/types"
)

// OperatingHours daily open/close window of a location
type OperatingHours struct {
	Open  types.TimeString
	Close types.TimeString
}

// Location represents a parking facility
type Location struct {
	ID      int64
	Name    string
	Address string
	Area    string

	// Geographic point (WGS84)
	Longitude float64
	Latitude  float64

	TotalSlots int
	// AvailableSlots денормализованный счетчик: количество слотов,
	// статус которых не occupied и не reserved. Изменяется только
	// сервисом жизненного цикла бронирований.
	AvailableSlots int

	Floors         int
	OperatingHours OperatingHours
	IsActive       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFull returns true if every slot is taken
func (l *Location) IsFull() bool {
	return l.AvailableSlots <= 0
}

// LocationWithDistance a location annotated with the great-circle
// distance (km) from a query point
type LocationWithDistance struct {
	Location
	DistanceKm float64
}
