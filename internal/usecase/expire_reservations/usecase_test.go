package expire_reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
)

// Mock структуры

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CompleteIfActive(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockSlotRepository struct {
	mock.Mock
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

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestUseCase(
	reservationRepo *MockReservationRepository,
	slotRepository *MockSlotRepository,
	locationRepo *MockLocationRepository,
	producer *MockProducer,
	now time.Time,
) *UseCase {
	uc := NewUseCase(reservationRepo, slotRepository, locationRepo, &fakeTxManager{}, producer, nil, nil, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func expiredReservation(id int64, now time.Time) *domain.Reservation {
	return &domain.Reservation{
		ID:         id,
		Code:       "SP-TEST-AAAA",
		UserID:     1,
		LocationID: 10,
		SlotID:     id + 100,
		EndTime:    now.Add(-time.Minute),
		Status:     domain.ReservationActive,
	}
}

// ============================ Тесты ============================

func TestExpireReservations_CompletesAndReleasesSlot(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}
	uc := newTestUseCase(reservationRepo, slotRepository, locationRepo, producer, now)

	ctx := context.Background()

	locationsCache := &MockLocationsCache{}
	locationsCache.On("Invalidate", ctx).Return(nil).Once()
	uc.cache = locationsCache

	reservation := expiredReservation(50, now)
	reservationRepo.On("ListExpiredActive", ctx, now).Return([]*domain.Reservation{reservation}, nil).Once()
	reservationRepo.On("CompleteIfActive", ctx, int64(50)).Return(true, nil).Once()
	slotRepository.On("Release", ctx, int64(150)).Return(true, nil).Once()
	locationRepo.On("IncrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	producer.On("Publish", ctx, mock.MatchedBy(func(e events.ReservationEvent) bool {
		return e.Type == events.TypeReservationCompleted && e.Code == "SP-TEST-AAAA"
	})).Return(nil).Once()

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, &Result{Found: 1, Completed: 1}, result)

	reservationRepo.AssertExpectations(t)
	slotRepository.AssertExpectations(t)
	locationRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
	locationsCache.AssertExpectations(t)
}

func TestExpireReservations_EmptyList(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	uc := newTestUseCase(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{}, now)

	ctx := context.Background()
	reservationRepo.On("ListExpiredActive", ctx, now).Return([]*domain.Reservation{}, nil).Once()

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, &Result{}, result)
}

func TestExpireReservations_SkipsCancelledInRace(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	producer := &MockProducer{}
	uc := newTestUseCase(reservationRepo, slotRepository, &MockLocationRepository{}, producer, now)

	ctx := context.Background()

	locationsCache := &MockLocationsCache{}
	uc.cache = locationsCache

	reservation := expiredReservation(50, now)
	reservationRepo.On("ListExpiredActive", ctx, now).Return([]*domain.Reservation{reservation}, nil).Once()

	// Пользователь успел отменить бронирование между выборкой и обработкой
	reservationRepo.On("CompleteIfActive", ctx, int64(50)).Return(false, nil).Once()

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, &Result{Found: 1, Skipped: 1}, result)
	slotRepository.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	locationsCache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestExpireReservations_SlotNotReservedSkipsCounter(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}
	uc := newTestUseCase(reservationRepo, slotRepository, locationRepo, producer, now)

	ctx := context.Background()
	reservation := expiredReservation(50, now)
	reservationRepo.On("ListExpiredActive", ctx, now).Return([]*domain.Reservation{reservation}, nil).Once()
	reservationRepo.On("CompleteIfActive", ctx, int64(50)).Return(true, nil).Once()
	slotRepository.On("Release", ctx, int64(150)).Return(false, nil).Once()
	producer.On("Publish", ctx, mock.AnythingOfType("events.ReservationEvent")).Return(nil).Once()

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, &Result{Found: 1, Completed: 1}, result)
	locationRepo.AssertNotCalled(t, "IncrementAvailableSlots", mock.Anything, mock.Anything)
}

func TestExpireReservations_FailureDoesNotStopBatch(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}
	uc := newTestUseCase(reservationRepo, slotRepository, locationRepo, producer, now)

	ctx := context.Background()
	first := expiredReservation(50, now)
	second := expiredReservation(51, now)
	reservationRepo.On("ListExpiredActive", ctx, now).
		Return([]*domain.Reservation{first, second}, nil).Once()

	reservationRepo.On("CompleteIfActive", ctx, int64(50)).Return(false, assert.AnError).Once()
	reservationRepo.On("CompleteIfActive", ctx, int64(51)).Return(true, nil).Once()
	slotRepository.On("Release", ctx, int64(151)).Return(true, nil).Once()
	locationRepo.On("IncrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	producer.On("Publish", ctx, mock.AnythingOfType("events.ReservationEvent")).Return(nil).Once()

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, &Result{Found: 2, Completed: 1, Failed: 1}, result)
	reservationRepo.AssertExpectations(t)
}

func TestExpireReservations_ListFailure(t *testing.T) {
	now := time.Now()

	reservationRepo := &MockReservationRepository{}
	uc := newTestUseCase(reservationRepo, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{}, now)

	ctx := context.Background()
	reservationRepo.On("ListExpiredActive", ctx, now).Return(nil, assert.AnError).Once()

	result, err := uc.Execute(ctx)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInternal)
}
