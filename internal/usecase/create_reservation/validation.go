package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Допуск на рассинхронизацию часов клиента и сервера
const startTimeSkewTolerance = time.Minute

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.LocationID <= 0 {
		return fmt.Errorf("%w: locationID must be positive", ErrInvalidInput)
	}

	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	if req.DurationHours < domain.MinReservationDurationHours ||
		req.DurationHours > domain.MaxReservationDurationHours {
		return fmt.Errorf("%w: durationHours must be between %d and %d",
			ErrInvalidDuration, domain.MinReservationDurationHours, domain.MaxReservationDurationHours)
	}

	if req.UserName == "" {
		return fmt.Errorf("%w: userName is required", ErrInvalidInput)
	}

	if req.UserPhone == "" {
		return fmt.Errorf("%w: userPhone is required", ErrInvalidInput)
	}

	if req.LicensePlate == "" {
		return fmt.Errorf("%w: licensePlate is required", ErrInvalidInput)
	}

	return nil
}

// resolveStartTime возвращает фактическое начало окна.
// Нулевое значение означает бронирование с текущего момента.
func resolveStartTime(requested time.Time, now time.Time) (time.Time, error) {
	if requested.IsZero() {
		return now, nil
	}

	if requested.Before(now.Add(-startTimeSkewTolerance)) {
		return time.Time{}, ErrInvalidStartTime
	}

	return requested, nil
}
