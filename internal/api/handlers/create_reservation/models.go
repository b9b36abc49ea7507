package create_reservation

import (
	"time"

	createReservation "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	LocationID    int64   `json:"locationId"`
	SlotID        int64   `json:"slotId"`
	StartTime     *string `json:"startTime,omitempty"` // RFC3339, по умолчанию - текущий момент
	DurationHours int     `json:"durationHours"`
	UserName      string  `json:"userName"`
	UserPhone     string  `json:"userPhone"`
	LicensePlate  string  `json:"licensePlate"`
}

// ReservationLocation сведения о локации в ответе
type ReservationLocation struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ReservationSlot сведения о слоте в ответе
type ReservationSlot struct {
	ID           int64   `json:"id"`
	SlotNumber   string  `json:"slotNumber"`
	Floor        int     `json:"floor"`
	Type         string  `json:"type"`
	PricePerHour float64 `json:"pricePerHour"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID            int64   `json:"id"`
	Code          string  `json:"code"`
	UserID        int64   `json:"userId"`
	LocationID    int64   `json:"locationId"`
	SlotID        int64   `json:"slotId"`
	StartTime     string  `json:"startTime"` // RFC3339
	EndTime       string  `json:"endTime"`   // RFC3339
	DurationHours int     `json:"durationHours"`
	TotalPrice    float64 `json:"totalPrice"`
	Status        string  `json:"status"`
	UserName      string  `json:"userName"`
	UserPhone     string  `json:"userPhone"`
	LicensePlate  string  `json:"licensePlate"`

	Location ReservationLocation `json:"location"`
	Slot     ReservationSlot     `json:"slot"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	var startTime time.Time
	if r.StartTime != nil && *r.StartTime != "" {
		parsed, err := time.Parse(time.RFC3339, *r.StartTime)
		if err != nil {
			return nil, err
		}
		startTime = parsed
	}

	return &createReservation.Request{
		UserID:        userID,
		LocationID:    r.LocationID,
		SlotID:        r.SlotID,
		StartTime:     startTime,
		DurationHours: r.DurationHours,
		UserName:      r.UserName,
		UserPhone:     r.UserPhone,
		LicensePlate:  r.LicensePlate,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:            resp.ID,
		Code:          resp.Code,
		UserID:        resp.UserID,
		LocationID:    resp.LocationID,
		SlotID:        resp.SlotID,
		StartTime:     resp.StartTime.Format(time.RFC3339),
		EndTime:       resp.EndTime.Format(time.RFC3339),
		DurationHours: resp.DurationHours,
		TotalPrice:    resp.TotalPrice,
		Status:        resp.Status,
		UserName:      resp.UserName,
		UserPhone:     resp.UserPhone,
		LicensePlate:  resp.LicensePlate,
		Location: ReservationLocation{
			ID:      resp.Location.ID,
			Name:    resp.Location.Name,
			Address: resp.Location.Address,
		},
		Slot: ReservationSlot{
			ID:           resp.Slot.ID,
			SlotNumber:   resp.Slot.SlotNumber,
			Floor:        resp.Slot.Floor,
			Type:         resp.Slot.Type,
			PricePerHour: resp.Slot.PricePerHour,
		},
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
