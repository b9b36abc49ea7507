package domain

import "time"

// SlotType represents the physical kind of a parking slot
type SlotType string

const (
	SlotTypeRegular  SlotType = "regular"
	SlotTypeCompact  SlotType = "compact"
	SlotTypeLarge    SlotType = "large"
	SlotTypeHandicap SlotType = "handicap"
	SlotTypeElectric SlotType = "electric"
)

// SlotStatus represents the occupancy state of a parking slot
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotOccupied    SlotStatus = "occupied"
	SlotReserved    SlotStatus = "reserved"
	SlotMaintenance SlotStatus = "maintenance"
)

// ParkingSlot represents a single parking slot at a location
type ParkingSlot struct {
	ID         int64
	LocationID int64

	// SlotNumber человекочитаемый номер, уникален в пределах локации
	SlotNumber string
	Floor      int
	Type       SlotType
	Status     SlotStatus

	PricePerHour float64

	// CurrentReservationID ссылка на активное бронирование,
	// занято тогда и только тогда, когда Status == reserved
	CurrentReservationID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAvailable returns true if the slot can accept a new reservation
func (s *ParkingSlot) IsAvailable() bool {
	return s.Status == SlotAvailable
}
