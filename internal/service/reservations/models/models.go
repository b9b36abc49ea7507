package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// GetUserReservationsRequest запрос на получение бронирований пользователя
type GetUserReservationsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// ExtendReservationRequest запрос на продление бронирования
type ExtendReservationRequest struct {
	UserID          int64 `json:"userId"`
	AdditionalHours int   `json:"additionalHours"`
}

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	UserID int64 `json:"userId"`
}

// DeleteReservationRequest запрос на удаление бронирования
type DeleteReservationRequest struct {
	UserID int64 `json:"userId"`
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`

	UserID     int64 `json:"userId"`
	LocationID int64 `json:"locationId"`
	SlotID     int64 `json:"slotId"`

	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	DurationHours int       `json:"durationHours"`
	TotalPrice    float64   `json:"totalPrice"`
	Status        string    `json:"status"`

	// Денормализованные данные
	UserName     string `json:"userName"`
	UserPhone    string `json:"userPhone"`
	LicensePlate string `json:"licensePlate"`

	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ID:            r.ID,
		Code:          r.Code,
		UserID:        r.UserID,
		LocationID:    r.LocationID,
		SlotID:        r.SlotID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		DurationHours: r.DurationHours,
		TotalPrice:    r.TotalPrice,
		Status:        string(r.Status),
		UserName:      r.UserName,
		UserPhone:     r.UserPhone,
		LicensePlate:  r.LicensePlate,
		CheckInTime:   r.CheckInTime,
		CheckOutTime:  r.CheckOutTime,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, reservation := range reservations {
		if reservationResp := FromDomainReservation(reservation); reservationResp != nil {
			resp.Reservations = append(resp.Reservations, *reservationResp)
		}
	}

	return resp
}

// ToDomainReservationStatus конвертирует строку в domain.ReservationStatus с валидацией
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	if !domain.ValidReservationStatus(status) {
		return "", ErrInvalidStatus
	}
	return domain.ReservationStatus(status), nil
}
