package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому пользователю
	ErrAccessDenied = errors.New("access denied")

	// ErrNotActive возвращается при попытке изменить неактивное бронирование
	ErrNotActive = errors.New("reservation is not active")

	// ErrDurationExceeded возвращается, когда продление превышает максимальную длительность
	ErrDurationExceeded = errors.New("maximum reservation duration exceeded")

	// ErrCannotDelete возвращается, когда активное бронирование еще не закончилось
	ErrCannotDelete = errors.New("active reservation cannot be deleted before it ends")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
