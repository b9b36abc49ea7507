package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Response модели

// SlotResponse ответ с данными парковочного слота
type SlotResponse struct {
	ID           int64   `json:"id"`
	LocationID   int64   `json:"locationId"`
	SlotNumber   string  `json:"slotNumber"`
	Floor        int     `json:"floor"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	PricePerHour float64 `json:"pricePerHour"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SlotListResponse ответ со списком слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.ParkingSlot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:           s.ID,
		LocationID:   s.LocationID,
		SlotNumber:   s.SlotNumber,
		Floor:        s.Floor,
		Type:         string(s.Type),
		Status:       string(s.Status),
		PricePerHour: s.PricePerHour,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// FromDomainSlotList конвертирует список domain моделей в DTO
func FromDomainSlotList(slots []*domain.ParkingSlot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
	}

	for _, slot := range slots {
		if slotResp := FromDomainSlot(slot); slotResp != nil {
			resp.Slots = append(resp.Slots, *slotResp)
		}
	}

	return resp
}
