package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модели

// NearbyLocationsRequest запрос на поиск локаций рядом с точкой
type NearbyLocationsRequest struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	RadiusKm  *float64 `json:"radiusKm,omitempty"` // По умолчанию domain.DefaultNearbyRadiusKm
}

// Response модели

// LocationResponse ответ с данными локации
type LocationResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Area           string `json:"area"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	TotalSlots     int    `json:"totalSlots"`
	AvailableSlots int    `json:"availableSlots"`
	Floors         int    `json:"floors"`
	OpenTime       string `json:"openTime"`  // "08:00"
	CloseTime      string `json:"closeTime"` // "22:00"
	IsActive       bool   `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LocationListResponse ответ со списком локаций
type LocationListResponse struct {
	Locations []LocationResponse `json:"locations"`
}

// NearbyLocationResponse локация с расстоянием до точки запроса
type NearbyLocationResponse struct {
	LocationResponse
	DistanceKm float64 `json:"distanceKm"`
}

// NearbyLocationListResponse ответ со списком ближайших локаций
type NearbyLocationListResponse struct {
	Locations []NearbyLocationResponse `json:"locations"`
	RadiusKm  float64                  `json:"radiusKm"`
}

// Методы конвертации

// FromDomainLocation конвертирует domain модель в DTO
func FromDomainLocation(l *domain.Location) *LocationResponse {
	if l == nil {
		return nil
	}

	return &LocationResponse{
		ID:             l.ID,
		Name:           l.Name,
		Address:        l.Address,
		Area:           l.Area,
		Longitude:      l.Longitude,
		Latitude:       l.Latitude,
		TotalSlots:     l.TotalSlots,
		AvailableSlots: l.AvailableSlots,
		Floors:         l.Floors,
		OpenTime:       l.OperatingHours.Open.String(),
		CloseTime:      l.OperatingHours.Close.String(),
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// FromDomainLocationList конвертирует список domain моделей в DTO
func FromDomainLocationList(locations []*domain.Location) *LocationListResponse {
	resp := &LocationListResponse{
		Locations: make([]LocationResponse, 0, len(locations)),
	}

	for _, location := range locations {
		if locationResp := FromDomainLocation(location); locationResp != nil {
			resp.Locations = append(resp.Locations, *locationResp)
		}
	}

	return resp
}

// FromDomainNearbyList конвертирует список локаций с расстояниями в DTO
func FromDomainNearbyList(locations []*domain.LocationWithDistance, radiusKm float64) *NearbyLocationListResponse {
	resp := &NearbyLocationListResponse{
		Locations: make([]NearbyLocationResponse, 0, len(locations)),
		RadiusKm:  radiusKm,
	}

	for _, location := range locations {
		locationResp := FromDomainLocation(&location.Location)
		if locationResp == nil {
			continue
		}
		resp.Locations = append(resp.Locations, NearbyLocationResponse{
			LocationResponse: *locationResp,
			DistanceKm:       location.DistanceKm,
		})
	}

	return resp
}
