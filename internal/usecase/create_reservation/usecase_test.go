package create_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
)

// Mock структуры

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	args := m.Called(ctx, reservation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
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

func (m *MockSlotRepository) Reserve(ctx context.Context, slotID, reservationID int64) error {
	args := m.Called(ctx, slotID, reservationID)
	return args.Error(0)
}

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

func (m *MockLocationRepository) DecrementAvailableSlots(ctx context.Context, id int64) error {
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

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixedTimeProvider возвращает заранее заданное время
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
	uc := NewUseCase(reservationRepo, slotRepository, locationRepo, &fakeTxManager{}, producer, nil, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func activeLocation() *domain.Location {
	return &domain.Location{
		ID:             10,
		Name:           "Центральная парковка",
		TotalSlots:     100,
		AvailableSlots: 42,
		IsActive:       true,
	}
}

func availableSlot() *domain.ParkingSlot {
	return &domain.ParkingSlot{
		ID:           7,
		LocationID:   10,
		SlotNumber:   "A-07",
		Status:       domain.SlotAvailable,
		PricePerHour: 150.0,
	}
}

func validRequest() *Request {
	return &Request{
		UserID:        1,
		LocationID:    10,
		SlotID:        7,
		DurationHours: 3,
		UserName:      "Иван Петров",
		UserPhone:     "+79991234567",
		LicensePlate:  "a123bc777",
	}
}

// ============================ Тесты ============================

func TestCreateReservation_Success(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}

	uc := newTestUseCase(reservationRepo, slotRepository, locationRepo, producer, now)

	ctx := context.Background()

	locationsCache := &MockLocationsCache{}
	locationsCache.On("Invalidate", ctx).Return(nil).Once()
	uc.cache = locationsCache

	locationRepo.On("GetByID", ctx, int64(10)).Return(activeLocation(), nil).Once()
	slotRepository.On("GetByID", ctx, int64(7)).Return(availableSlot(), nil).Once()

	reservationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) {
			reservation := args.Get(1).(*domain.Reservation)
			// Цена рассчитана сервером, номер в верхнем регистре
			assert.Equal(t, 450.0, reservation.TotalPrice)
			assert.Equal(t, "A123BC777", reservation.LicensePlate)
			assert.Equal(t, domain.ReservationActive, reservation.Status)
			assert.Equal(t, now, reservation.StartTime)
			assert.Equal(t, now.Add(3*time.Hour), reservation.EndTime)
		}).
		Return(&domain.Reservation{
			ID:            99,
			Code:          "SP-TEST-AAAA",
			UserID:        1,
			LocationID:    10,
			SlotID:        7,
			StartTime:     now,
			EndTime:       now.Add(3 * time.Hour),
			DurationHours: 3,
			TotalPrice:    450.0,
			Status:        domain.ReservationActive,
		}, nil).Once()

	slotRepository.On("Reserve", ctx, int64(7), int64(99)).Return(nil).Once()
	locationRepo.On("DecrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	producer.On("Publish", ctx, mock.AnythingOfType("events.ReservationEvent")).Return(nil).Once()

	resp, err := uc.Execute(ctx, validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int64(99), resp.ID)
	assert.Equal(t, "SP-TEST-AAAA", resp.Code)
	assert.Equal(t, 450.0, resp.TotalPrice)
	assert.Equal(t, int64(10), resp.Location.ID)
	assert.Equal(t, int64(7), resp.Slot.ID)
	assert.Equal(t, 150.0, resp.Slot.PricePerHour)

	reservationRepo.AssertExpectations(t)
	slotRepository.AssertExpectations(t)
	locationRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
	locationsCache.AssertExpectations(t)
}

func TestCreateReservation_ValidationErrors(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&MockReservationRepository{}, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{}, now)

	ctx := context.Background()

	testCases := []struct {
		name        string
		mutate      func(req *Request)
		expectedErr error
	}{
		{"zero user", func(r *Request) { r.UserID = 0 }, ErrInvalidInput},
		{"zero location", func(r *Request) { r.LocationID = 0 }, ErrInvalidInput},
		{"zero slot", func(r *Request) { r.SlotID = 0 }, ErrInvalidInput},
		{"duration too short", func(r *Request) { r.DurationHours = 0 }, ErrInvalidDuration},
		{"duration too long", func(r *Request) { r.DurationHours = 7 }, ErrInvalidDuration},
		{"missing name", func(r *Request) { r.UserName = "" }, ErrInvalidInput},
		{"missing phone", func(r *Request) { r.UserPhone = "" }, ErrInvalidInput},
		{"missing plate", func(r *Request) { r.LicensePlate = "" }, ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			resp, err := uc.Execute(ctx, req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestCreateReservation_StartTimeInPast(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&MockReservationRepository{}, &MockSlotRepository{}, &MockLocationRepository{}, &MockProducer{}, now)

	req := validRequest()
	req.StartTime = now.Add(-time.Hour)

	resp, err := uc.Execute(context.Background(), req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestCreateReservation_LocationInactive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	locationRepo := &MockLocationRepository{}
	uc := newTestUseCase(&MockReservationRepository{}, &MockSlotRepository{}, locationRepo, &MockProducer{}, now)

	ctx := context.Background()
	inactive := activeLocation()
	inactive.IsActive = false
	locationRepo.On("GetByID", ctx, int64(10)).Return(inactive, nil).Once()

	resp, err := uc.Execute(ctx, validRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrLocationInactive)
	locationRepo.AssertExpectations(t)
}

func TestCreateReservation_SlotTakenConcurrently(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}

	uc := newTestUseCase(reservationRepo, slotRepository, locationRepo, &MockProducer{}, now)

	ctx := context.Background()
	locationRepo.On("GetByID", ctx, int64(10)).Return(activeLocation(), nil).Once()
	slotRepository.On("GetByID", ctx, int64(7)).Return(availableSlot(), nil).Once()
	reservationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Reservation")).
		Return(&domain.Reservation{ID: 99, Status: domain.ReservationActive}, nil).Once()

	// Конкурентный запрос успел захватить слот первым
	slotRepository.On("Reserve", ctx, int64(7), int64(99)).Return(slotRepo.ErrSlotNotAvailable).Once()

	resp, err := uc.Execute(ctx, validRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	slotRepository.AssertExpectations(t)
}

func TestCreateReservation_SlotFromAnotherLocation(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}

	uc := newTestUseCase(&MockReservationRepository{}, slotRepository, locationRepo, &MockProducer{}, now)

	ctx := context.Background()
	locationRepo.On("GetByID", ctx, int64(10)).Return(activeLocation(), nil).Once()

	foreign := availableSlot()
	foreign.LocationID = 11
	slotRepository.On("GetByID", ctx, int64(7)).Return(foreign, nil).Once()

	resp, err := uc.Execute(ctx, validRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCreateReservation_PublishFailureDoesNotFailRequest(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	reservationRepo := &MockReservationRepository{}
	slotRepository := &MockSlotRepository{}
	locationRepo := &MockLocationRepository{}
	producer := &MockProducer{}

	uc := newTestUseCase(reservationRepo, slotRepository, locationRepo, producer, now)

	ctx := context.Background()
	locationRepo.On("GetByID", ctx, int64(10)).Return(activeLocation(), nil).Once()
	slotRepository.On("GetByID", ctx, int64(7)).Return(availableSlot(), nil).Once()
	reservationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Reservation")).
		Return(&domain.Reservation{ID: 99, Code: "SP-TEST-BBBB", Status: domain.ReservationActive}, nil).Once()
	slotRepository.On("Reserve", ctx, int64(7), int64(99)).Return(nil).Once()
	locationRepo.On("DecrementAvailableSlots", ctx, int64(10)).Return(nil).Once()
	producer.On("Publish", ctx, mock.AnythingOfType("events.ReservationEvent")).
		Return(assert.AnError).Once()

	resp, err := uc.Execute(ctx, validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	producer.AssertExpectations(t)
}
