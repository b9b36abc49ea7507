package slots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	locationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/location"
	"github.com/m04kA/SMC-ParkingService/internal/service/slots/models"
)

// Доля искусственно занятых слотов, отображаемых как reserved, а не occupied
const simulateReservedChance = 0.3

// Service сервис для работы с парковочными слотами
type Service struct {
	slotRepo     SlotRepository
	locationRepo LocationRepository
	logger       Logger

	// Демо-режим: часть свободных слотов отображается занятыми, чтобы
	// картина совпадала со счетчиком available_slots локации.
	// Влияет только на ответы, статусы в БД не меняются.
	simulateOccupancy bool
	rnd               *rand.Rand
}

// NewService создает новый экземпляр сервиса слотов.
// При simulateOccupancy=true ответы ListByLocation искажаются
// демо-генератором занятости.
func NewService(
	slotRepo SlotRepository,
	locationRepo LocationRepository,
	logger Logger,
	simulateOccupancy bool,
	rnd *rand.Rand,
) *Service {
	return &Service{
		slotRepo:          slotRepo,
		locationRepo:      locationRepo,
		logger:            logger,
		simulateOccupancy: simulateOccupancy,
		rnd:               rnd,
	}
}

// ListByLocation получает все слоты локации
func (s *Service) ListByLocation(ctx context.Context, locationID int64) (*models.SlotListResponse, error) {
	s.logger.Info("ListByLocation: fetching slots for location=%d", locationID)

	location, err := s.getLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListByLocation(ctx, locationID)
	if err != nil {
		s.logger.Error("ListByLocation: repository error for location=%d: %v", locationID, err)
		return nil, fmt.Errorf("%w: ListByLocation - repository error: %v", ErrInternal, err)
	}

	if s.simulateOccupancy {
		slots = s.applySimulatedOccupancy(slots, location)
	}

	s.logger.Info("ListByLocation: successfully fetched %d slots for location=%d", len(slots), locationID)
	return models.FromDomainSlotList(slots), nil
}

// ListAvailableByLocation получает только свободные слоты локации.
// Демо-генератор здесь не применяется: список используется при
// создании бронирования и должен отражать реальное состояние.
func (s *Service) ListAvailableByLocation(ctx context.Context, locationID int64) (*models.SlotListResponse, error) {
	s.logger.Info("ListAvailableByLocation: fetching available slots for location=%d", locationID)

	if _, err := s.getLocation(ctx, locationID); err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListAvailableByLocation(ctx, locationID)
	if err != nil {
		s.logger.Error("ListAvailableByLocation: repository error for location=%d: %v", locationID, err)
		return nil, fmt.Errorf("%w: ListAvailableByLocation - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListAvailableByLocation: successfully fetched %d slots for location=%d", len(slots), locationID)
	return models.FromDomainSlotList(slots), nil
}

// applySimulatedOccupancy помечает часть свободных слотов занятыми так,
// чтобы число свободных совпало со счетчиком available_slots локации.
// Слоты с привязанным бронированием или не-available статусом не трогает.
// Возвращает копии, исходные модели не мутируются.
func (s *Service) applySimulatedOccupancy(slots []*domain.ParkingSlot, location *domain.Location) []*domain.ParkingSlot {
	result := make([]*domain.ParkingSlot, len(slots))
	copy(result, slots)

	free := make([]int, 0, len(slots))
	for i, slot := range slots {
		if slot.Status == domain.SlotAvailable && slot.CurrentReservationID == nil {
			free = append(free, i)
		}
	}

	toMark := len(slots) - location.AvailableSlots - (len(slots) - len(free))
	if toMark <= 0 {
		return result
	}
	if toMark > len(free) {
		toMark = len(free)
	}

	s.rnd.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	for _, idx := range free[:toMark] {
		copied := *slots[idx]
		if s.rnd.Float64() < simulateReservedChance {
			copied.Status = domain.SlotReserved
		} else {
			copied.Status = domain.SlotOccupied
		}
		result[idx] = &copied
	}

	return result
}

func (s *Service) getLocation(ctx context.Context, locationID int64) (*domain.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, locationRepo.ErrLocationNotFound) {
			s.logger.Warn("getLocation: location=%d not found", locationID)
			return nil, ErrLocationNotFound
		}
		s.logger.Error("getLocation: repository error for location=%d: %v", locationID, err)
		return nil, fmt.Errorf("%w: getLocation - repository error: %v", ErrInternal, err)
	}
	return location, nil
}
