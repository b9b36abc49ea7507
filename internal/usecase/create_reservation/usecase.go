package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
	locationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/location"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	slotRepo        SlotRepository
	locationRepo    LocationRepository
	txManager       TransactionManager
	producer        EventProducer  // может быть nil, если Kafka отключена
	cache           LocationsCache // может быть nil, если Redis отключен
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
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		locationRepo:    locationRepo,
		txManager:       txManager,
		producer:        producer,
		cache:           cache,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// создание записи, захват слота и декремент счетчика либо проходят
// вместе, либо откатываются вместе
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, location=%d, slot=%d, duration=%dh",
		req.UserID, req.LocationID, req.SlotID, req.DurationHours)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время и разрешаем начало окна
	now := uc.timeProvider.Now()

	startTime, err := resolveStartTime(req.StartTime, now)
	if err != nil {
		uc.logger.Warn("CreateReservation: invalid start time %s", req.StartTime)
		return nil, err
	}

	endTime := startTime.Add(time.Duration(req.DurationHours) * time.Hour)

	// Переменные для хранения результата
	var (
		result         *domain.Reservation
		bookedLocation *domain.Location
		bookedSlot     *domain.ParkingSlot
	)

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем локацию с блокировкой (FOR UPDATE)
		location, err := uc.locationRepo.GetByID(txCtx, req.LocationID)
		if err != nil {
			if errors.Is(err, locationRepo.ErrLocationNotFound) {
				uc.logger.Warn("CreateReservation: location id=%d not found", req.LocationID)
				return ErrLocationNotFound
			}
			uc.logger.Error("CreateReservation: failed to get location id=%d: %v", req.LocationID, err)
			return fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
		}

		if !location.IsActive {
			uc.logger.Warn("CreateReservation: location id=%d is not active", req.LocationID)
			return ErrLocationInactive
		}

		if location.IsFull() {
			uc.logger.Warn("CreateReservation: location id=%d has no free slots", req.LocationID)
			return ErrSlotNotAvailable
		}

		// 3.2. Получаем слот с блокировкой (FOR UPDATE)
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateReservation: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateReservation: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		if slot.LocationID != req.LocationID {
			uc.logger.Warn("CreateReservation: slot id=%d belongs to location=%d, not %d",
				req.SlotID, slot.LocationID, req.LocationID)
			return ErrSlotNotFound
		}

		if !slot.IsAvailable() {
			uc.logger.Warn("CreateReservation: slot id=%d is not available, status=%s", req.SlotID, slot.Status)
			return ErrSlotNotAvailable
		}

		// 3.3. Стоимость считается сервером по тарифу слота
		totalPrice := float64(req.DurationHours) * slot.PricePerHour

		// 3.4. Создаем бронирование с денормализацией контактных данных
		reservation := &domain.Reservation{
			Code:          domain.GenerateReservationCode(now),
			UserID:        req.UserID,
			LocationID:    req.LocationID,
			SlotID:        req.SlotID,
			StartTime:     startTime,
			EndTime:       endTime,
			DurationHours: req.DurationHours,
			TotalPrice:    totalPrice,
			Status:        domain.ReservationActive,
			UserName:      req.UserName,
			UserPhone:     req.UserPhone,
			LicensePlate:  strings.ToUpper(req.LicensePlate),
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		// 3.5. Захватываем слот условным UPDATE (available -> reserved)
		if err := uc.slotRepo.Reserve(txCtx, req.SlotID, created.ID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("CreateReservation: slot id=%d taken by concurrent request", req.SlotID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateReservation: failed to reserve slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
		}

		// 3.6. Уменьшаем счетчик свободных слотов локации
		if err := uc.locationRepo.DecrementAvailableSlots(txCtx, req.LocationID); err != nil {
			if errors.Is(err, locationRepo.ErrNoAvailableSlots) {
				uc.logger.Warn("CreateReservation: location id=%d counter exhausted by concurrent request", req.LocationID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateReservation: failed to decrement counter for location id=%d: %v", req.LocationID, err)
			return fmt.Errorf("%w: failed to decrement available slots: %v", ErrInternal, err)
		}

		result = created
		bookedLocation = location
		bookedSlot = slot
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d code=%s", result.ID, result.Code)

	// 4. Публикуем событие и сбрасываем кэш локаций,
	// ошибки не откатывают бронирование
	uc.publishCreated(ctx, result)
	uc.invalidateLocationsCache(ctx)

	// Конвертируем в response
	return &Response{
		ID:            result.ID,
		Code:          result.Code,
		UserID:        result.UserID,
		LocationID:    result.LocationID,
		SlotID:        result.SlotID,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		DurationHours: result.DurationHours,
		TotalPrice:    result.TotalPrice,
		Status:        string(result.Status),
		UserName:      result.UserName,
		UserPhone:     result.UserPhone,
		LicensePlate:  result.LicensePlate,
		Location: LocationInfo{
			ID:      bookedLocation.ID,
			Name:    bookedLocation.Name,
			Address: bookedLocation.Address,
		},
		Slot: SlotInfo{
			ID:           bookedSlot.ID,
			SlotNumber:   bookedSlot.SlotNumber,
			Floor:        bookedSlot.Floor,
			Type:         string(bookedSlot.Type),
			PricePerHour: bookedSlot.PricePerHour,
		},
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}

// invalidateLocationsCache сбрасывает кэшированный список локаций после
// изменения счетчика available_slots. Ошибка только логируется,
// устаревшая запись истечет по TTL.
func (uc *UseCase) invalidateLocationsCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("CreateReservation: failed to invalidate locations cache: %v", err)
	}
}

// publishCreated отправляет событие о создании бронирования
func (uc *UseCase) publishCreated(ctx context.Context, reservation *domain.Reservation) {
	if uc.producer == nil {
		return
	}

	event := events.ReservationEvent{
		Type:       events.TypeReservationCreated,
		Code:       reservation.Code,
		UserID:     reservation.UserID,
		LocationID: reservation.LocationID,
		SlotID:     reservation.SlotID,
		Status:     string(reservation.Status),
		EndTime:    reservation.EndTime,
		OccurredAt: uc.timeProvider.Now(),
	}

	if err := uc.producer.Publish(ctx, event); err != nil {
		uc.logger.Error("CreateReservation: failed to publish event for code=%s: %v", reservation.Code, err)
	}
}
