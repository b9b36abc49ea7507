package events

import "time"

// Типы событий жизненного цикла бронирования
const (
	TypeReservationCreated   = "reservation_created"
	TypeReservationCancelled = "reservation_cancelled"
	TypeReservationCompleted = "reservation_completed"
)

// ReservationEvent событие жизненного цикла бронирования,
// публикуется в Kafka с ключом по коду бронирования
type ReservationEvent struct {
	Type       string    `json:"type"`
	Code       string    `json:"code"`
	UserID     int64     `json:"user_id"`
	LocationID int64     `json:"location_id"`
	SlotID     int64     `json:"slot_id"`
	Status     string    `json:"status"`
	EndTime    time.Time `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}
