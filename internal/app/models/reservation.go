package models

import "time"

// Reservation is a user's booking of a class slot.
type Reservation struct {
	ID           int64             `json:"id" db:"id"`
	UserID       int64             `json:"userId" db:"user_id"`
	ClassName    string            `json:"className" db:"class_name"`
	ReservedDate time.Time         `json:"reservedDate" db:"reserved_date"` // date only
	ReservedTime string            `json:"reservedTime" db:"reserved_time"`
	Status       ReservationStatus `json:"status" db:"status"`
}

// DateString renders the reserved date in form format.
func (r *Reservation) DateString() string {
	if r.ReservedDate.IsZero() {
		return ""
	}
	return r.ReservedDate.Format(DateLayout)
}

// DateLayout is the wire format of reservation dates.
const DateLayout = "2006-01-02"
