package locations

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// LocationRepository интерфейс репозитория локаций
type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	ListActive(ctx context.Context) ([]*domain.Location, error)
}

// LocationsCache интерфейс кэша списка локаций.
// Промах кэша — (nil, nil).
type LocationsCache interface {
	GetLocations(ctx context.Context) ([]*domain.Location, error)
	SetLocations(ctx context.Context, locations []*domain.Location) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
