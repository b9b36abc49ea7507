package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

// Service сервис жизненного цикла бронирований
type Service struct {
	reservationRepo ReservationRepository
	slotRepo        SlotRepository
	locationRepo    LocationRepository
	txManager       TransactionManager
	producer        EventProducer  // может быть nil, если Kafka отключена
	cache           LocationsCache // может быть nil, если Redis отключен
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	slotRepo SlotRepository,
	locationRepo LocationRepository,
	txManager TransactionManager,
	producer EventProducer,
	cache LocationsCache,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		locationRepo:    locationRepo,
		txManager:       txManager,
		producer:        producer,
		cache:           cache,
		logger:          logger,
	}
}

// GetByID получает бронирование по ID.
// Пользователь может видеть только свои бронирования.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d", id)
	return models.FromDomainReservation(reservation), nil
}

// GetUserReservations получает историю бронирований пользователя,
// новые первыми. Опционально фильтрует по статусу.
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	reservations, err := s.reservationRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: successfully fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// Extend продлевает активное бронирование на additionalHours.
// Суммарная длительность не может превысить максимум, стоимость
// пересчитывается по тарифу слота на стороне сервера.
func (s *Service) Extend(ctx context.Context, reservationID int64, req *models.ExtendReservationRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Extend: extending reservation id=%d by %dh for user=%d",
		reservationID, req.AdditionalHours, req.UserID)

	if req.AdditionalHours < 1 {
		s.logger.Warn("Extend: invalid additionalHours=%d for reservation id=%d", req.AdditionalHours, reservationID)
		return nil, fmt.Errorf("%w: additionalHours must be at least 1", ErrInvalidInput)
	}

	var extended *domain.Reservation
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		reservation, err := s.getOwned(ctx, reservationID, req.UserID)
		if err != nil {
			return err
		}

		if !reservation.IsActive() {
			s.logger.Warn("Extend: reservation id=%d is not active, status=%s", reservationID, reservation.Status)
			return ErrNotActive
		}

		if !reservation.CanBeExtended(req.AdditionalHours) {
			s.logger.Warn("Extend: reservation id=%d would exceed max duration: %d+%dh",
				reservationID, reservation.DurationHours, req.AdditionalHours)
			return ErrDurationExceeded
		}

		slot, err := s.slotRepo.GetByID(ctx, reservation.SlotID)
		if err != nil {
			s.logger.Error("Extend: failed to get slot=%d for reservation id=%d: %v", reservation.SlotID, reservationID, err)
			return fmt.Errorf("%w: Extend - slot repository error: %v", ErrInternal, err)
		}

		newDuration := reservation.DurationHours + req.AdditionalHours
		newEndTime := reservation.EndTime.Add(time.Duration(req.AdditionalHours) * time.Hour)
		newPrice := float64(newDuration) * slot.PricePerHour

		if err := s.reservationRepo.Extend(ctx, reservationID, newEndTime, newDuration, newPrice); err != nil {
			s.logger.Error("Extend: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Extend - repository error: %v", ErrInternal, err)
		}

		reservation.EndTime = newEndTime
		reservation.DurationHours = newDuration
		reservation.TotalPrice = newPrice
		extended = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Extend: successfully extended reservation id=%d to %dh", reservationID, extended.DurationHours)
	return models.FromDomainReservation(extended), nil
}

// Cancel отменяет активное бронирование и освобождает слот.
// Статус, слот и счетчик локации меняются в одной транзакции.
func (s *Service) Cancel(ctx context.Context, reservationID int64, req *models.CancelReservationRequest) error {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", reservationID, req.UserID)

	var cancelled *domain.Reservation
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		reservation, err := s.getOwned(ctx, reservationID, req.UserID)
		if err != nil {
			return err
		}

		if !reservation.CanBeCancelled() {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", reservationID, reservation.Status)
			return ErrNotActive
		}

		if err := s.reservationRepo.UpdateStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if err := s.releaseSlot(ctx, reservation); err != nil {
			return err
		}

		cancelled = reservation
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.TypeReservationCancelled, cancelled, domain.ReservationCancelled)
	s.invalidateLocationsCache(ctx)

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", reservationID)
	return nil
}

// Delete физически удаляет бронирование.
// Разрешено для терминальных статусов, а также для активных
// бронирований с уже закончившимся окном - тогда слот освобождается.
func (s *Service) Delete(ctx context.Context, reservationID int64, req *models.DeleteReservationRequest) error {
	s.logger.Info("Delete: deleting reservation id=%d by user=%d", reservationID, req.UserID)

	var slotReleased bool
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		reservation, err := s.getOwned(ctx, reservationID, req.UserID)
		if err != nil {
			return err
		}

		if !reservation.CanBeDeleted(time.Now()) {
			s.logger.Warn("Delete: reservation id=%d is still active, ends at %s", reservationID, reservation.EndTime)
			return ErrCannotDelete
		}

		// Активное закончившееся бронирование до удаления освобождает слот
		if reservation.IsActive() {
			if err := s.releaseSlot(ctx, reservation); err != nil {
				return err
			}
			slotReleased = true
		}

		if err := s.reservationRepo.Delete(ctx, reservationID); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			s.logger.Error("Delete: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if slotReleased {
		s.invalidateLocationsCache(ctx)
	}

	s.logger.Info("Delete: successfully deleted reservation id=%d", reservationID)
	return nil
}

// Вспомогательные методы

// getOwned получает бронирование и проверяет владельца
func (s *Service) getOwned(ctx context.Context, id int64, userID int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("getOwned: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("getOwned: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getOwned - repository error: %v", ErrInternal, err)
	}

	if reservation.UserID != userID {
		s.logger.Warn("getOwned: access denied for user=%d to reservation id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return reservation, nil
}

// releaseSlot возвращает слот в пул и увеличивает счетчик локации.
// Если слот уже не reserved (переведен в maintenance), счетчик не трогаем.
func (s *Service) releaseSlot(ctx context.Context, reservation *domain.Reservation) error {
	released, err := s.slotRepo.Release(ctx, reservation.SlotID)
	if err != nil {
		s.logger.Error("releaseSlot: failed to release slot=%d: %v", reservation.SlotID, err)
		return fmt.Errorf("%w: releaseSlot - slot repository error: %v", ErrInternal, err)
	}

	if !released {
		s.logger.Warn("releaseSlot: slot=%d was not in reserved state, counter unchanged", reservation.SlotID)
		return nil
	}

	if err := s.locationRepo.IncrementAvailableSlots(ctx, reservation.LocationID); err != nil {
		s.logger.Error("releaseSlot: failed to increment counter for location=%d: %v", reservation.LocationID, err)
		return fmt.Errorf("%w: releaseSlot - location repository error: %v", ErrInternal, err)
	}

	return nil
}

// invalidateLocationsCache сбрасывает кэшированный список локаций после
// изменения счетчика available_slots. Ошибка только логируется,
// устаревшая запись истечет по TTL.
func (s *Service) invalidateLocationsCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidateLocationsCache: failed to invalidate locations cache: %v", err)
	}
}

// publishEvent отправляет событие жизненного цикла. Ошибка публикации
// логируется и не откатывает уже завершенную транзакцию.
func (s *Service) publishEvent(ctx context.Context, eventType string, reservation *domain.Reservation, status domain.ReservationStatus) {
	if s.producer == nil || reservation == nil {
		return
	}

	event := events.ReservationEvent{
		Type:       eventType,
		Code:       reservation.Code,
		UserID:     reservation.UserID,
		LocationID: reservation.LocationID,
		SlotID:     reservation.SlotID,
		Status:     string(status),
		EndTime:    reservation.EndTime,
		OccurredAt: time.Now(),
	}

	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.Error("publishEvent: failed to publish %s for reservation code=%s: %v", eventType, reservation.Code, err)
	}
}
