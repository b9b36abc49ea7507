package locations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	locationRepository "github.com/m04kA/SMC-ParkingService/internal/infra/storage/location"
	"github.com/m04kA/SMC-ParkingService/internal/service/locations/models"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

// Mock структуры

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *MockLocationRepository) ListActive(ctx context.Context) ([]*domain.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Location), args.Error(1)
}

type MockLocationsCache struct {
	mock.Mock
}

func (m *MockLocationsCache) GetLocations(ctx context.Context) ([]*domain.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Location), args.Error(1)
}

func (m *MockLocationsCache) SetLocations(ctx context.Context, locations []*domain.Location) error {
	args := m.Called(ctx, locations)
	return args.Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// Красная площадь
func centralLocation() *domain.Location {
	return &domain.Location{
		ID:        10,
		Name:      "Центральная парковка",
		Latitude:  55.7539,
		Longitude: 37.6208,
		IsActive:  true,
	}
}

// Санкт-Петербург, заведомо дальше любого разумного радиуса
func remoteLocation() *domain.Location {
	return &domain.Location{
		ID:        11,
		Name:      "Северная парковка",
		Latitude:  59.9343,
		Longitude: 30.3351,
		IsActive:  true,
	}
}

// ============================ Тесты ============================

func TestLocations_List_WithoutCache(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	svc := NewService(locationRepo, nil, nopLogger{})

	ctx := context.Background()
	locationRepo.On("ListActive", ctx).Return([]*domain.Location{centralLocation()}, nil).Once()

	resp, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, resp.Locations, 1)
	locationRepo.AssertExpectations(t)
}

func TestLocations_List_CacheHitSkipsDatabase(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	cache := &MockLocationsCache{}
	svc := NewService(locationRepo, cache, nopLogger{})

	ctx := context.Background()
	cache.On("GetLocations", ctx).Return([]*domain.Location{centralLocation()}, nil).Once()

	resp, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, resp.Locations, 1)
	locationRepo.AssertNotCalled(t, "ListActive", mock.Anything)
}

func TestLocations_List_CacheMissPopulatesCache(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	cache := &MockLocationsCache{}
	svc := NewService(locationRepo, cache, nopLogger{})

	ctx := context.Background()
	locations := []*domain.Location{centralLocation()}
	cache.On("GetLocations", ctx).Return(nil, nil).Once()
	locationRepo.On("ListActive", ctx).Return(locations, nil).Once()
	cache.On("SetLocations", ctx, locations).Return(nil).Once()

	resp, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, resp.Locations, 1)
	cache.AssertExpectations(t)
}

func TestLocations_List_CacheErrorFallsBackToDatabase(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	cache := &MockLocationsCache{}
	svc := NewService(locationRepo, cache, nopLogger{})

	ctx := context.Background()
	locations := []*domain.Location{centralLocation()}
	cache.On("GetLocations", ctx).Return(nil, assert.AnError).Once()
	locationRepo.On("ListActive", ctx).Return(locations, nil).Once()
	cache.On("SetLocations", ctx, locations).Return(nil).Once()

	resp, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, resp.Locations, 1)
	locationRepo.AssertExpectations(t)
}

func TestLocations_GetByID_NotFound(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	svc := NewService(locationRepo, nil, nopLogger{})

	ctx := context.Background()
	locationRepo.On("GetByID", ctx, int64(404)).Return(nil, locationRepository.ErrLocationNotFound).Once()

	resp, err := svc.GetByID(ctx, 404)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestLocations_Nearby_FiltersByRadius(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	svc := NewService(locationRepo, nil, nopLogger{})

	ctx := context.Background()
	locationRepo.On("ListActive", ctx).
		Return([]*domain.Location{centralLocation(), remoteLocation()}, nil).Once()

	// Точка в центре Москвы, радиус по умолчанию
	resp, err := svc.Nearby(ctx, &models.NearbyLocationsRequest{
		Latitude:  55.7558,
		Longitude: 37.6173,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultNearbyRadiusKm, resp.RadiusKm)
	assert.Len(t, resp.Locations, 1)
	assert.Equal(t, int64(10), resp.Locations[0].ID)
	assert.Greater(t, resp.Locations[0].DistanceKm, 0.0)
}

func TestLocations_Nearby_CustomRadiusCoversRemote(t *testing.T) {
	locationRepo := &MockLocationRepository{}
	svc := NewService(locationRepo, nil, nopLogger{})

	ctx := context.Background()
	locationRepo.On("ListActive", ctx).
		Return([]*domain.Location{centralLocation(), remoteLocation()}, nil).Once()

	resp, err := svc.Nearby(ctx, &models.NearbyLocationsRequest{
		Latitude:  55.7558,
		Longitude: 37.6173,
		RadiusKm:  ptr.Ptr(700.0),
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Locations, 2)
}

func TestLocations_Nearby_InvalidInput(t *testing.T) {
	svc := NewService(&MockLocationRepository{}, nil, nopLogger{})
	ctx := context.Background()

	testCases := []struct {
		name    string
		request *models.NearbyLocationsRequest
	}{
		{"latitude above range", &models.NearbyLocationsRequest{Latitude: 91, Longitude: 0}},
		{"latitude below range", &models.NearbyLocationsRequest{Latitude: -91, Longitude: 0}},
		{"longitude above range", &models.NearbyLocationsRequest{Latitude: 0, Longitude: 181}},
		{"longitude below range", &models.NearbyLocationsRequest{Latitude: 0, Longitude: -181}},
		{"non-positive radius", &models.NearbyLocationsRequest{Latitude: 0, Longitude: 0, RadiusKm: ptr.Ptr(-1.0)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Nearby(ctx, tc.request)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
