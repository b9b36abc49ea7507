package extend_reservation

// ExtendReservationRequest HTTP request model
type ExtendReservationRequest struct {
	AdditionalHours int `json:"additionalHours"`
}
