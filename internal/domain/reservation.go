package domain

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// ContactInfo denormalized contact snapshot captured at booking time
type ContactInfo struct {
	UserName     string
	UserPhone    string
	LicensePlate string
}

// Reservation represents a parking slot booking over a time window
type Reservation struct {
	ID   int64
	Code string

	UserID     int64
	LocationID int64
	SlotID     int64

	StartTime     time.Time
	EndTime       time.Time
	DurationHours int
	TotalPrice    float64

	Status ReservationStatus

	// Denormalized contact data captured at booking time
	UserName     string
	UserPhone    string
	LicensePlate string

	// Хранятся, но жизненным циклом не используются
	CheckInTime  *time.Time
	CheckOutTime *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation is in the active state
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}

// IsTerminal returns true if the reservation reached a terminal state
func (r *Reservation) IsTerminal() bool {
	return r.Status == ReservationCancelled ||
		r.Status == ReservationCompleted ||
		r.Status == ReservationExpired
}

// HasEnded returns true if the reservation window is over at the given time
func (r *Reservation) HasEnded(now time.Time) bool {
	return !r.EndTime.After(now)
}

// CanBeCancelled returns true if the reservation can still be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == ReservationActive
}

// CanBeExtended returns true if adding additionalHours keeps the total
// duration within the cap
func (r *Reservation) CanBeExtended(additionalHours int) bool {
	return r.Status == ReservationActive &&
		r.DurationHours+additionalHours <= MaxReservationDurationHours
}

// CanBeDeleted returns true if the reservation may be hard-deleted:
// terminal status, or active with the window already over
func (r *Reservation) CanBeDeleted(now time.Time) bool {
	if r.IsTerminal() {
		return true
	}
	return r.Status == ReservationActive && r.HasEnded(now)
}

// ValidReservationStatus reports whether the given string is a known status
func ValidReservationStatus(s string) bool {
	switch ReservationStatus(s) {
	case ReservationActive, ReservationCompleted, ReservationCancelled, ReservationExpired:
		return true
	}
	return false
}

// GenerateReservationCode produces a human-readable booking code:
// prefix, base-36 uppercase millisecond timestamp, 4 random base-36
// uppercase characters. Uniqueness is not guaranteed, collision
// probability is negligible for this volume.
func GenerateReservationCode(now time.Time) string {
	timestamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffix := make([]byte, reservationCodeRandomLength)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}

	return ReservationCodePrefix + "-" + timestamp + "-" + string(suffix)
}
