package location

import "errors"

var (
	// ErrLocationNotFound возвращается, когда локация не найдена
	ErrLocationNotFound = errors.New("location.repository: location not found")

	// ErrNoAvailableSlots возвращается, когда декремент счетчика невозможен
	// (available_slots уже равен нулю)
	ErrNoAvailableSlots = errors.New("location.repository: no available slots to decrement")

	// ErrCounterOverflow возвращается, когда инкремент счетчика невозможен
	// (available_slots уже равен total_slots)
	ErrCounterOverflow = errors.New("location.repository: available slots counter at capacity")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("location.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("location.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("location.repository: failed to scan row")
)
