package nearby_locations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/service/locations"
	"github.com/m04kA/SMC-ParkingService/internal/service/locations/models"
)

const (
	msgMissingCoordinates = "параметры latitude и longitude обязательны"
	msgInvalidCoordinates = "некорректные координаты"
	msgInvalidRadius      = "некорректный радиус поиска"
)

type Handler struct {
	service LocationService
	logger  Logger
}

func NewHandler(service LocationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/locations/nearby?latitude=..&longitude=..&radius=..
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	latStr := query.Get("latitude")
	lonStr := query.Get("longitude")
	if latStr == "" || lonStr == "" {
		h.logger.Warn("GET /locations/nearby - Missing coordinates")
		handlers.RespondBadRequest(w, msgMissingCoordinates)
		return
	}

	latitude, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		h.logger.Warn("GET /locations/nearby - Invalid latitude %q", latStr)
		handlers.RespondBadRequest(w, msgInvalidCoordinates)
		return
	}

	longitude, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		h.logger.Warn("GET /locations/nearby - Invalid longitude %q", lonStr)
		handlers.RespondBadRequest(w, msgInvalidCoordinates)
		return
	}

	req := &models.NearbyLocationsRequest{
		Latitude:  latitude,
		Longitude: longitude,
	}

	if radiusStr := query.Get("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			h.logger.Warn("GET /locations/nearby - Invalid radius %q", radiusStr)
			handlers.RespondBadRequest(w, msgInvalidRadius)
			return
		}
		req.RadiusKm = &radius
	}

	result, err := h.service.Nearby(r.Context(), req)
	if err != nil {
		if errors.Is(err, locations.ErrInvalidInput) {
			h.logger.Warn("GET /locations/nearby - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidCoordinates)
			return
		}
		h.logger.Error("GET /locations/nearby - Failed to search locations: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /locations/nearby - Returned %d locations within %.1fkm", len(result.Locations), result.RadiusKm)
	handlers.RespondJSON(w, http.StatusOK, result)
}
