package domain

// Reservation duration limits (hours)
const (
	MinReservationDurationHours = 1
	MaxReservationDurationHours = 6
)

// Nearby query defaults
const (
	DefaultNearbyRadiusKm = 5.0
)

// Reservation code format: SP-<base36 timestamp>-<4 random base36 chars>
const (
	ReservationCodePrefix       = "SP"
	reservationCodeRandomLength = 4
)

