package expire_reservations

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
)

// UseCase use case завершения просроченных бронирований.
// Запускается по таймеру: находит активные бронирования с истекшим
// окном, завершает их и возвращает слоты в пул.
type UseCase struct {
	reservationRepo ReservationRepository
	slotRepo        SlotRepository
	locationRepo    LocationRepository
	txManager       TransactionManager
	producer        EventProducer  // может быть nil, если Kafka отключена
	cache           LocationsCache // может быть nil, если Redis отключен
	metrics         Metrics        // может быть nil, если метрики отключены
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	slotRepo SlotRepository,
	locationRepo LocationRepository,
	txManager TransactionManager,
	producer EventProducer,
	cache LocationsCache,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		locationRepo:    locationRepo,
		txManager:       txManager,
		producer:        producer,
		cache:           cache,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет один проход обработчика.
// Каждое бронирование завершается в собственной транзакции: ошибка
// на одном элементе не мешает обработать остальные.
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now()

	expired, err := uc.reservationRepo.ListExpiredActive(ctx, now)
	if err != nil {
		uc.logger.Error("ExpireReservations: failed to list expired reservations: %v", err)
		uc.incErrors("list")
		return nil, fmt.Errorf("%w: failed to list expired reservations: %v", ErrInternal, err)
	}

	result := &Result{Found: len(expired)}
	if len(expired) == 0 {
		return result, nil
	}

	uc.logger.Info("ExpireReservations: found %d expired reservations", len(expired))

	for _, reservation := range expired {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		completed, err := uc.expireOne(ctx, reservation)
		switch {
		case err != nil:
			result.Failed++
			uc.incErrors("expire")
			uc.logger.Error("ExpireReservations: failed to expire reservation id=%d code=%s: %v",
				reservation.ID, reservation.Code, err)
		case completed:
			result.Completed++
			uc.incProcessed("completed")
			uc.publishCompleted(ctx, reservation)
		default:
			result.Skipped++
			uc.incProcessed("skipped")
		}
	}

	// Счетчики локаций изменились - кэшированный список устарел
	if result.Completed > 0 {
		uc.invalidateLocationsCache(ctx)
	}

	uc.logger.Info("ExpireReservations: pass finished, completed=%d skipped=%d failed=%d",
		result.Completed, result.Skipped, result.Failed)
	return result, nil
}

// expireOne завершает одно бронирование в транзакции.
// Возвращает false, если бронирование уже покинуло статус active
// (пользователь отменил его между выборкой и обработкой).
func (uc *UseCase) expireOne(ctx context.Context, reservation *domain.Reservation) (bool, error) {
	var completed bool

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		flipped, err := uc.reservationRepo.CompleteIfActive(txCtx, reservation.ID)
		if err != nil {
			return fmt.Errorf("complete reservation: %w", err)
		}

		if !flipped {
			uc.logger.Info("ExpireReservations: reservation id=%d already left active state", reservation.ID)
			return nil
		}

		released, err := uc.slotRepo.Release(txCtx, reservation.SlotID)
		if err != nil {
			return fmt.Errorf("release slot: %w", err)
		}

		if released {
			if err := uc.locationRepo.IncrementAvailableSlots(txCtx, reservation.LocationID); err != nil {
				return fmt.Errorf("increment available slots: %w", err)
			}
		} else {
			uc.logger.Warn("ExpireReservations: slot=%d was not reserved, counter unchanged", reservation.SlotID)
		}

		completed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return completed, nil
}

// publishCompleted отправляет событие о завершении бронирования
func (uc *UseCase) publishCompleted(ctx context.Context, reservation *domain.Reservation) {
	if uc.producer == nil {
		return
	}

	event := events.ReservationEvent{
		Type:       events.TypeReservationCompleted,
		Code:       reservation.Code,
		UserID:     reservation.UserID,
		LocationID: reservation.LocationID,
		SlotID:     reservation.SlotID,
		Status:     string(domain.ReservationCompleted),
		EndTime:    reservation.EndTime,
		OccurredAt: uc.timeProvider.Now(),
	}

	if err := uc.producer.Publish(ctx, event); err != nil {
		uc.logger.Error("ExpireReservations: failed to publish event for code=%s: %v", reservation.Code, err)
	}
}

func (uc *UseCase) invalidateLocationsCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("ExpireReservations: failed to invalidate locations cache: %v", err)
	}
}

func (uc *UseCase) incProcessed(result string) {
	if uc.metrics != nil {
		uc.metrics.IncSweeperProcessed(result)
	}
}

func (uc *UseCase) incErrors(stage string) {
	if uc.metrics != nil {
		uc.metrics.IncSweeperErrors(stage)
	}
}
