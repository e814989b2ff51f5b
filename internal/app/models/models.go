package models

// ReservationStatus is the lifecycle state of a booking.
type ReservationStatus string

const (
	// ReservationPending is assigned on creation and never changed by an edit.
	ReservationPending ReservationStatus = "pending"
)
