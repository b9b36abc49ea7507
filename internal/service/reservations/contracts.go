package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error
	Extend(ctx context.Context, id int64, endTime time.Time, durationHours int, totalPrice float64) error
	Delete(ctx context.Context, id int64) error
}

// SlotRepository интерфейс репозитория парковочных слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error)
	Release(ctx context.Context, slotID int64) (bool, error)
}

// LocationRepository интерфейс репозитория локаций
type LocationRepository interface {
	IncrementAvailableSlots(ctx context.Context, id int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventProducer интерфейс продюсера событий бронирований
type EventProducer interface {
	Publish(ctx context.Context, event events.ReservationEvent) error
}

// LocationsCache интерфейс сброса кэша локаций.
// Счетчики available_slots попадают в кэшированный список.
type LocationsCache interface {
	Invalidate(ctx context.Context) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
