package create_reservation

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	UserID        int64     // ID пользователя
	LocationID    int64     // ID локации парковки
	SlotID        int64     // ID парковочного слота
	StartTime     time.Time // Начало окна, нулевое значение - с текущего момента
	DurationHours int       // Длительность в часах

	// Контактные данные, снимок на момент бронирования
	UserName     string
	UserPhone    string
	LicensePlate string
}

// LocationInfo сведения о локации на момент бронирования
type LocationInfo struct {
	ID      int64
	Name    string
	Address string
}

// SlotInfo сведения о слоте на момент бронирования
type SlotInfo struct {
	ID           int64
	SlotNumber   string
	Floor        int
	Type         string
	PricePerHour float64
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID   int64  // ID созданного бронирования
	Code string // Человекочитаемый код бронирования

	UserID     int64
	LocationID int64
	SlotID     int64

	StartTime     time.Time
	EndTime       time.Time
	DurationHours int
	TotalPrice    float64 // Рассчитывается сервером по тарифу слота
	Status        string

	// Денормализованные данные
	UserName     string
	UserPhone    string
	LicensePlate string

	// Детали локации и слота на момент бронирования
	Location LocationInfo
	Slot     SlotInfo

	CreatedAt time.Time
	UpdatedAt time.Time
}
