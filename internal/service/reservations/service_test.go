package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

// Mock структуры

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReservationRepository) Extend(ctx context.Context, id int64, endTime time.Time, durationHours int, totalPrice float64) error {
	args := m.Called(ctx, id, endTime, durationHours, totalPrice)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSlot), args.Error(1)
}

func (m *MockSlotRepository) Release(ctx context.Context, slotID int64) (bool, error) {
	args := m.Called(ctx, slotID)
	return args.Bool(0), args.Error(1)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) IncrementAvailableSlots(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, event events.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockLocationsCache struct {
	mock.Mock
}

func (m *MockLocationsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestService(
	reservationRepo *MockReservationRepository,
	slotRepository *MockSlotRepository,
	locationRepo *MockLocationRepository,
	producer *MockProducer,
) *Service {
	return NewService(reservationRepo, slotRepository, locationRepo, &fakeTxManager{}, producer, nil, nopLogger{})
}

func activeReservation(now time.Time) *domain.Reservation {
	return &domain.Reservation{
		ID:            50,
		Code:          "SP-TEST-CCCC",
		UserID:        1,
		LocationID:    10,
		SlotID:        7,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(2 * time.Hour),
		DurationHours: 3,
		TotalPrice:    450.0,
		Status:        domain.ReservationActive,
	}
}

// ============================ Тесты ============================

func TestReservations_GetByID_AccessDenied(t *testing.T) {
	reservationRepo := &MockReservationRepository{}
	svc := newTestService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	reservationRepo.On("GetByID", ctx, int64(50)).Return(activeReservation(time.Now()), nil).Once()

	resp, err := svc.GetByID(ctx, 50, 999)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestReservations_Extend_Success(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	svc := newTestService(reservationRepo, slotRepository, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	reservation := activeReservation(now)
	reservationRepo.On("GetByID", ctx, int64(50)).Return(reservation, nil).Once()
	slotRepository.On("GetByID", ctx, int64(7)).Return(&domain.ParkingSlot{
		ID:           7,
		PricePerHour: 150.0,
	}, nil).Once()

	expectedEnd := reservation.EndTime.Add(2 * time.Hour)
	// 5 часов по 150 = 750
	reservationRepo.On("Extend", ctx, int64(50), expectedEnd, 5, 750.0).Return(nil).Once()

	resp, err := svc.Extend(ctx, 50, &models.ExtendReservationRequest{UserID: 1, AdditionalHours: 2})

	assert.NoError(t, err)
	assert.Equal(t, 5, resp.DurationHours)
	assert.Equal(t, 750.0, resp.TotalPrice)

	reservationRepo.AssertExpectations(t)
	slotRepository.AssertExpectations(t)
}

func TestReservations_Extend_DurationExceeded(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	svc := newTestService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	reservationRepo.On("GetByID", ctx, int64(50)).Return(activeReservation(now), nil).Once()

	// 3 + 4 > 6
	resp, err := svc.Extend(ctx, 50, &models.ExtendReservationRequest{UserID: 1, AdditionalHours: 4})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrDurationExceeded)
}

func TestReservations_Extend_NotActive(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	svc := newTestService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	cancelled := activeReservation(now)
	cancelled.Status = domain.ReservationCancelled
	reservationRepo.On("GetByID", ctx, int64(50)).Return(cancelled, nil).Once()

	resp, err := svc.Extend(ctx, 50, &models.ExtendReservationRequest{UserID: 1, AdditionalHours: 1})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestReservations_Cancel_Success(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}
	svc := newTestService(reservationRepo, slotRepository, locationRepo, producer)

	ctx := context.Background()
	reservationRepo.On("GetByID", ctx, int64(50)).Return(activeReservation(now), nil).Once()
	reservationRepo.On("UpdateStatus", ctx, int64(50), domain.ReservationCancelled).Return(nil).Once()
	slotRepository.On("Release", ctx, int64(7)).Return(true, nil).Once()
	locationRepo.On("IncrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	producer.On("Publish", ctx, mock.MatchedBy(func(e events.ReservationEvent) bool {
		return e.Type == events.TypeReservationCancelled && e.Code == "SP-TEST-CCCC"
	})).Return(nil).Once()

	err := svc.Cancel(ctx, 50, &models.CancelReservationRequest{UserID: 1})

	assert.NoError(t, err)
	reservationRepo.AssertExpectations(t)
	slotRepository.AssertExpectations(t)
	locationRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestReservations_Cancel_InvalidatesLocationsCache(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}
	locationsCache := &MockLocationsCache{}
	svc := NewService(reservationRepo, slotRepository, locationRepo, &fakeTxManager{}, producer, locationsCache, nopLogger{})

	ctx := context.Background()
	reservationRepo.On("GetByID", ctx, int64(50)).Return(activeReservation(now), nil).Once()
	reservationRepo.On("UpdateStatus", ctx, int64(50), domain.ReservationCancelled).Return(nil).Once()
	slotRepository.On("Release", ctx, int64(7)).Return(true, nil).Once()
	locationRepo.On("IncrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	producer.On("Publish", ctx, mock.AnythingOfType("events.ReservationEvent")).Return(nil).Once()

	// Счетчик локации изменился - кэшированный список должен сброситься
	locationsCache.On("Invalidate", ctx).Return(nil).Once()

	err := svc.Cancel(ctx, 50, &models.CancelReservationRequest{UserID: 1})

	assert.NoError(t, err)
	locationsCache.AssertExpectations(t)
}

func TestReservations_Delete_TerminalKeepsLocationsCache(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	locationsCache := &MockLocationsCache{}
	svc := NewService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &fakeTxManager{}, &MockProducer{}, locationsCache, nopLogger{})

	ctx := context.Background()
	completed := activeReservation(now)
	completed.Status = domain.ReservationCompleted
	reservationRepo.On("GetByID", ctx, int64(50)).Return(completed, nil).Once()
	reservationRepo.On("Delete", ctx, int64(50)).Return(nil).Once()

	err := svc.Delete(ctx, 50, &models.DeleteReservationRequest{UserID: 1})

	// Счетчики не менялись, кэш остается
	assert.NoError(t, err)
	locationsCache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestReservations_Cancel_AlreadyCancelled(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	svc := newTestService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	cancelled := activeReservation(now)
	cancelled.Status = domain.ReservationCancelled
	reservationRepo.On("GetByID", ctx, int64(50)).Return(cancelled, nil).Once()

	err := svc.Cancel(ctx, 50, &models.CancelReservationRequest{UserID: 1})

	assert.ErrorIs(t, err, ErrNotActive)
}

func TestReservations_Cancel_SlotInMaintenance(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}
	svc := newTestService(reservationRepo, slotRepository, locationRepo, producer)

	ctx := context.Background()
	reservationRepo.On("GetByID", ctx, int64(50)).Return(activeReservation(now), nil).Once()
	reservationRepo.On("UpdateStatus", ctx, int64(50), domain.ReservationCancelled).Return(nil).Once()

	// Слот уже не reserved - счетчик не трогаем
	slotRepository.On("Release", ctx, int64(7)).Return(false, nil).Once()
	producer.On("Publish", ctx, mock.AnythingOfType("events.ReservationEvent")).Return(nil).Once()

	err := svc.Cancel(ctx, 50, &models.CancelReservationRequest{UserID: 1})

	assert.NoError(t, err)
	locationRepo.AssertNotCalled(t, "IncrementAvailableSlots", mock.Anything, mock.Anything)
}

func TestReservations_Delete_ActiveStillRunning(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	svc := newTestService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	reservationRepo.On("GetByID", ctx, int64(50)).Return(activeReservation(now), nil).Once()

	err := svc.Delete(ctx, 50, &models.DeleteReservationRequest{UserID: 1})

	assert.ErrorIs(t, err, ErrCannotDelete)
	reservationRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReservations_Delete_ActiveThatEndedReleasesSlot(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	svc := newTestService(reservationRepo, slotRepository, locationRepo, &MockProducer{})

	ctx := context.Background()
	ended := activeReservation(now)
	ended.EndTime = now.Add(-time.Minute)
	reservationRepo.On("GetByID", ctx, int64(50)).Return(ended, nil).Once()
	slotRepository.On("Release", ctx, int64(7)).Return(true, nil).Once()
	locationRepo.On("IncrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	reservationRepo.On("Delete", ctx, int64(50)).Return(nil).Once()

	err := svc.Delete(ctx, 50, &models.DeleteReservationRequest{UserID: 1})

	assert.NoError(t, err)
	reservationRepo.AssertExpectations(t)
	slotRepository.AssertExpectations(t)
	locationRepo.AssertExpectations(t)
}

func TestReservations_Delete_TerminalStatusSkipsSlotRelease(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	svc := newTestService(reservationRepo, slotRepository, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	completed := activeReservation(now)
	completed.Status = domain.ReservationCompleted
	reservationRepo.On("GetByID", ctx, int64(50)).Return(completed, nil).Once()
	reservationRepo.On("Delete", ctx, int64(50)).Return(nil).Once()

	err := svc.Delete(ctx, 50, &models.DeleteReservationRequest{UserID: 1})

	assert.NoError(t, err)
	slotRepository.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestReservations_GetUserReservations_InvalidStatus(t *testing.T) {
	svc := newTestService(&MockReservationRepository{}, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	resp, err := svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{
		UserID: 1,
		Status: ptr.Ptr("pending"),
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReservations_GetUserReservations_PassesStatusFilter(t *testing.T) {
	reservationRepo := &MockReservationRepository{}
	svc := newTestService(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{})

	ctx := context.Background()
	active := domain.ReservationActive
	reservationRepo.On("GetByUserID", ctx, int64(1), &active).
		Return([]*domain.Reservation{activeReservation(time.Now())}, nil).Once()

	resp, err := svc.GetUserReservations(ctx, &models.GetUserReservationsRequest{UserID: 1, Status: ptr.Ptr("active")})

	assert.NoError(t, err)
	assert.Len(t, resp.Reservations, 1)
	reservationRepo.AssertExpectations(t)
}
