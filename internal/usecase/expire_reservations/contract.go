package expire_reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ListExpiredActive(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
	CompleteIfActive(ctx context.Context, id int64) (bool, error)
}

// SlotRepository интерфейс репозитория парковочных слотов
type SlotRepository interface {
	Release(ctx context.Context, slotID int64) (bool, error)
}

// LocationRepository интерфейс репозитория локаций
type LocationRepository interface {
	IncrementAvailableSlots(ctx context.Context, id int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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

// Metrics интерфейс счетчиков фонового обработчика
type Metrics interface {
	IncSweeperProcessed(result string)
	IncSweeperErrors(stage string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
