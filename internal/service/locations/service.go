package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	locationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/location"
	"github.com/m04kA/SMC-ParkingService/internal/service/locations/models"
)

// Service сервис для работы с локациями парковок
type Service struct {
	locationRepo LocationRepository
	cache        LocationsCache // может быть nil, если Redis отключен
	logger       Logger
}

// NewService создает новый экземпляр сервиса локаций
func NewService(locationRepo LocationRepository, cache LocationsCache, logger Logger) *Service {
	return &Service{
		locationRepo: locationRepo,
		cache:        cache,
		logger:       logger,
	}
}

// List получает все активные локации.
// Читает через кэш: промах или ошибка Redis деградируют до запроса в БД.
func (s *Service) List(ctx context.Context) (*models.LocationListResponse, error) {
	s.logger.Info("List: fetching active locations")

	if s.cache != nil {
		cached, err := s.cache.GetLocations(ctx)
		if err != nil {
			s.logger.Warn("List: cache read failed, falling back to database: %v", err)
		} else if cached != nil {
			s.logger.Info("List: served %d locations from cache", len(cached))
			return models.FromDomainLocationList(cached), nil
		}
	}

	locations, err := s.locationRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	if s.cache != nil {
		if err := s.cache.SetLocations(ctx, locations); err != nil {
			s.logger.Warn("List: cache write failed: %v", err)
		}
	}

	s.logger.Info("List: successfully fetched %d locations", len(locations))
	return models.FromDomainLocationList(locations), nil
}

// GetByID получает локацию по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.LocationResponse, error) {
	s.logger.Info("GetByID: fetching location id=%d", id)

	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, locationRepo.ErrLocationNotFound) {
			s.logger.Warn("GetByID: location id=%d not found", id)
			return nil, ErrLocationNotFound
		}
		s.logger.Error("GetByID: repository error for location id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainLocation(location), nil
}

// Nearby получает активные локации в радиусе от точки.
// Расстояние считается по формуле гаверсинусов, фильтр применяется
// в памяти поверх полного списка активных локаций.
func (s *Service) Nearby(ctx context.Context, req *models.NearbyLocationsRequest) (*models.NearbyLocationListResponse, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		s.logger.Warn("Nearby: invalid coordinates lat=%f lon=%f", req.Latitude, req.Longitude)
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}

	radiusKm := domain.DefaultNearbyRadiusKm
	if req.RadiusKm != nil {
		if *req.RadiusKm <= 0 {
			s.logger.Warn("Nearby: invalid radius=%f", *req.RadiusKm)
			return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidInput)
		}
		radiusKm = *req.RadiusKm
	}

	s.logger.Info("Nearby: searching locations around lat=%f lon=%f radius=%fkm",
		req.Latitude, req.Longitude, radiusKm)

	locations, err := s.locationRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Nearby: repository error: %v", err)
		return nil, fmt.Errorf("%w: Nearby - repository error: %v", ErrInternal, err)
	}

	nearby := make([]*domain.LocationWithDistance, 0)
	for _, location := range locations {
		distance := domain.HaversineDistance(req.Latitude, req.Longitude, location.Latitude, location.Longitude)
		if distance <= radiusKm {
			nearby = append(nearby, &domain.LocationWithDistance{
				Location:   *location,
				DistanceKm: distance,
			})
		}
	}

	s.logger.Info("Nearby: found %d locations within %fkm", len(nearby), radiusKm)
	return models.FromDomainNearbyList(nearby, radiusKm), nil
}
