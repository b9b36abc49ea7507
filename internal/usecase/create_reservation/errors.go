package create_reservation

import "errors"

var (
	// ErrLocationNotFound возвращается, когда локация не найдена
	ErrLocationNotFound = errors.New("create_reservation: location not found")

	// ErrLocationInactive возвращается, когда локация выключена
	ErrLocationInactive = errors.New("create_reservation: location is not active")

	// ErrSlotNotFound возвращается, когда слот не найден в указанной локации
	ErrSlotNotFound = errors.New("create_reservation: slot not found")

	// ErrSlotNotAvailable возвращается, когда слот занят или локация заполнена
	ErrSlotNotAvailable = errors.New("create_reservation: slot is not available")

	// ErrInvalidStartTime возвращается, когда время начала в прошлом
	ErrInvalidStartTime = errors.New("create_reservation: start time is in the past")

	// ErrInvalidDuration возвращается при недопустимой длительности
	ErrInvalidDuration = errors.New("create_reservation: invalid duration")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
