package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	createReservation "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartTime   = "некорректное время начала, ожидается RFC3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgLocationNotFound   = "локация не найдена"
	msgLocationInactive   = "локация временно не работает"
	msgSlotNotFound       = "парковочный слот не найден"
	msgSlotNotAvailable   = "парковочный слот недоступен"
	msgStartTimeInPast    = "время начала бронирования в прошлом"
	msgInvalidDuration    = "недопустимая длительность бронирования"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrSlotNotAvailable):
			h.logger.Warn("POST /reservations - Slot not available: user_id=%d, slot_id=%d", userID, req.SlotID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createReservation.ErrLocationNotFound):
			h.logger.Warn("POST /reservations - Location not found: location_id=%d", req.LocationID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, createReservation.ErrSlotNotFound):
			h.logger.Warn("POST /reservations - Slot not found: location_id=%d, slot_id=%d", req.LocationID, req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createReservation.ErrLocationInactive):
			h.logger.Warn("POST /reservations - Location inactive: location_id=%d", req.LocationID)
			handlers.RespondError(w, http.StatusConflict, msgLocationInactive)

		case errors.Is(err, createReservation.ErrInvalidStartTime):
			h.logger.Warn("POST /reservations - Start time in past: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgStartTimeInPast)

		case errors.Is(err, createReservation.ErrInvalidDuration):
			h.logger.Warn("POST /reservations - Invalid duration=%d: user_id=%d", req.DurationHours, userID)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, slot_id=%d, error=%v",
				userID, req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /reservations - Reservation created successfully: id=%d, code=%s, user_id=%d",
		result.ID, result.Code, userID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
